package woocommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intcomex-sync/internal/types"
)

func testClient(serverURL string) *Client {
	cfg := types.DefaultConfig()
	cfg.StoreURL = serverURL
	cfg.ConsumerKey = "ck_test"
	cfg.ConsumerSecret = "cs_test"
	cfg.MaxRetries = 3
	cfg.BackoffStep = time.Millisecond
	return NewClient(cfg, logrus.New())
}

func TestFindProductBySKU_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "AB123", r.URL.Query().Get("sku"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		json.NewEncoder(w).Encode([]Product{{ID: 42, SKU: "AB123", Name: "Notebook"}})
	}))
	defer server.Close()

	product, err := testClient(server.URL).FindProductBySKU(context.Background(), "AB123")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, 42, product.ID)
}

func TestFindProductBySKU_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	product, err := testClient(server.URL).FindProductBySKU(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestCreateProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var payload Product
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "AB123", payload.SKU)
		assert.Equal(t, "187500", payload.RegularPrice)
		assert.True(t, payload.ManageStock)

		payload.ID = 7
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	created, err := testClient(server.URL).CreateProduct(context.Background(), &Product{
		Name:         "Notebook HP",
		Type:         "simple",
		SKU:          "AB123",
		RegularPrice: "187500",
		ManageStock:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
}

func TestUpdateProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)

		var payload ProductUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "instock", payload.StockStatus)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	err := testClient(server.URL).UpdateProduct(context.Background(), 42, &ProductUpdate{
		RegularPrice:  "187500",
		StockQuantity: 11,
		StockStatus:   StockStatus(11),
	})
	require.NoError(t, err)
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	_, err := testClient(server.URL).FindProductBySKU(context.Background(), "AB123")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FindProductBySKU(context.Background(), "AB123")
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.NotErrorIs(t, err, ErrAuth)
}

func TestDo_AuthFailureIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(server.URL).FindProductBySKU(context.Background(), "AB123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestStockStatus(t *testing.T) {
	assert.Equal(t, "instock", StockStatus(1))
	assert.Equal(t, "outofstock", StockStatus(0))
	assert.Equal(t, "outofstock", StockStatus(-1))
}
