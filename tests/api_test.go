package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// AuthResponse структура ответа при аутентификации
type AuthResponse struct {
	Token string `json:"token"`
}

// CartResponse структура ответа при создании/чтении корзины
type CartResponse struct {
	ID    string `json:"id"`
	Items []struct {
		ID        int64  `json:"id"`
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Name      string `json:"product_name,omitempty"`
	} `json:"items"`
}

// CartItemResponse структура ответа при добавлении товара
type CartItemResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderResponse структура ответа при оформлении заказа
type OrderResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Items  []struct {
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"items"`
}

// requireServer пропускает тест, если сервер не запущен локально
func requireServer(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "localhost:8080", time.Second)
	if err != nil {
		t.Skip("server is not running on localhost:8080")
	}
	conn.Close()
}

func authenticateUser(t *testing.T, username, password string) string {
	reqBody := []byte(`{"username": "` + username + `", "password": "` + password + `"}`)
	resp, err := http.Post(baseURL+"/api/auth", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err, "Auth request should not error")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected 200 OK for valid auth")

	var authResp AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResp)
	assert.NoError(t, err, "Decoding auth response should succeed")
	assert.NotEmpty(t, authResp.Token, "Token should not be empty")
	return authResp.Token
}

func createCart(t *testing.T) string {
	resp, err := http.Post(baseURL+"/api/carts", "application/json", nil)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "expected 201 for cart creation")

	var cart CartResponse
	err = json.NewDecoder(resp.Body).Decode(&cart)
	assert.NoError(t, err)
	assert.NotEmpty(t, cart.ID, "cart token should not be empty")
	return cart.ID
}

func addItem(t *testing.T, cartID string, productID int64, quantity int) CartItemResponse {
	reqBody := []byte(fmt.Sprintf(`{"product_id": %d, "quantity": %d}`, productID, quantity))
	resp, err := http.Post(baseURL+"/api/carts/"+cartID+"/items", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "expected 201 for adding an item")

	var item CartItemResponse
	err = json.NewDecoder(resp.Body).Decode(&item)
	assert.NoError(t, err)
	return item
}

// сценарий с успешной аутентификацией пользователя
func TestAuth(t *testing.T) {
	requireServer(t)
	token := authenticateUser(t, "testuser@gmail.com", "testpass123")
	assert.NotEmpty(t, token, "token should be obtained")
}

// сценарий с безуспешной аутентификацией пользователя
func TestAuthInvalid(t *testing.T) {
	requireServer(t)
	reqBody := []byte(`{"username": "", "password": ""}`)
	resp, err := http.Post(baseURL+"/api/auth", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for invalid auth")
}

// сценарий создания анонимной корзины
func TestCreateCart(t *testing.T) {
	requireServer(t)
	cartID := createCart(t)
	assert.NotEmpty(t, cartID)
}

// сценарий слияния позиций: повторное добавление того же товара
// увеличивает количество, а не создает вторую позицию
func TestAddItemMerge(t *testing.T) {
	requireServer(t)
	cartID := createCart(t)

	first := addItem(t, cartID, 1, 2)
	assert.Equal(t, 2, first.Quantity)

	second := addItem(t, cartID, 1, 3)
	assert.Equal(t, 5, second.Quantity, "quantities should be merged")
	assert.Equal(t, first.ID, second.ID, "the cart item should be the same")

	resp, err := http.Get(baseURL + "/api/carts/" + cartID)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cart CartResponse
	err = json.NewDecoder(resp.Body).Decode(&cart)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1, "cart should contain a single merged item")
}

// сценарий добавления несуществующего товара
func TestAddItemUnknownProduct(t *testing.T) {
	requireServer(t)
	cartID := createCart(t)

	reqBody := []byte(`{"product_id": 999999, "quantity": 1}`)
	resp, err := http.Post(baseURL+"/api/carts/"+cartID+"/items", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown product")
}

// полный сценарий: корзина наполняется, заказ оформляется, корзина пустеет
func TestPlaceOrderFlow(t *testing.T) {
	requireServer(t)
	token := authenticateUser(t, "orderflow@test.com", "testpass123")
	cartID := createCart(t)
	addItem(t, cartID, 1, 2)
	addItem(t, cartID, 2, 1)

	reqBody := []byte(fmt.Sprintf(`{"cart_id": %q}`, cartID))
	req, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "expected 201 for order placement")

	var order OrderResponse
	err = json.NewDecoder(resp.Body).Decode(&order)
	assert.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
	assert.Len(t, order.Items, 2, "order should carry both cart items")

	// Корзина должна быть пуста после оформления
	cartResp, err := http.Get(baseURL + "/api/carts/" + cartID)
	assert.NoError(t, err)
	defer cartResp.Body.Close()
	assert.Equal(t, http.StatusOK, cartResp.StatusCode)

	var cart CartResponse
	err = json.NewDecoder(cartResp.Body).Decode(&cart)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items, "cart should be empty after the order is placed")

	// Повторное оформление той же корзины должно отклоняться
	req2, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer([]byte(fmt.Sprintf(`{"cart_id": %q}`, cartID))))
	assert.NoError(t, err)
	req2.Header.Set("Authorization", "Bearer "+token)
	req2.Header.Set("Content-Type", "application/json")

	resp2, err := client.Do(req2)
	assert.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode, "expected 400 for re-converting an emptied cart")
}

// сценарий оформления заказа без авторизации
func TestPlaceOrderUnauthorized(t *testing.T) {
	requireServer(t)
	cartID := createCart(t)
	addItem(t, cartID, 1, 1)

	reqBody := []byte(fmt.Sprintf(`{"cart_id": %q}`, cartID))
	resp, err := http.Post(baseURL+"/api/orders", "application/json", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "expected 401 unauthorized for missing token")
}

// сценарий оформления пустой корзины
func TestPlaceOrderEmptyCart(t *testing.T) {
	requireServer(t)
	token := authenticateUser(t, "emptycart@test.com", "testpass123")
	cartID := createCart(t)

	reqBody := []byte(fmt.Sprintf(`{"cart_id": %q}`, cartID))
	req, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for empty cart")
}

// сценарий просмотра заказов текущего покупателя
func TestListOrders(t *testing.T) {
	requireServer(t)
	token := authenticateUser(t, "listorders@test.com", "testpass123")
	cartID := createCart(t)
	addItem(t, cartID, 1, 1)

	reqBody := []byte(fmt.Sprintf(`{"cart_id": %q}`, cartID))
	req, err := http.NewRequest("POST", baseURL+"/api/orders", bytes.NewBuffer(reqBody))
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	assert.NoError(t, err)
	resp.Body.Close()

	listReq, err := http.NewRequest("GET", baseURL+"/api/orders", nil)
	assert.NoError(t, err)
	listReq.Header.Set("Authorization", "Bearer "+token)

	listResp, err := client.Do(listReq)
	assert.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode, "expected 200 OK for /api/orders")

	var orders []OrderResponse
	err = json.NewDecoder(listResp.Body).Decode(&orders)
	assert.NoError(t, err)
	assert.NotEmpty(t, orders, "customer should see the placed order")
}
