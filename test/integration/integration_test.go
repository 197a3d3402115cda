// Package integration exercises a running service instance over HTTP.
// Start the server and set BASE_URL (or rely on the default) before running;
// the suite skips when no server is reachable.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func waitReady(t *testing.T) {
	t.Helper()
	url := baseURL() + "/healthz"
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Skipf("no server reachable at %s", baseURL())
}

func postJSON(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(baseURL()+path, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var m map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&m)
	return resp, m
}

func TestIntegration_ItemLifecycle(t *testing.T) {
	waitReady(t)

	resp, body := postJSON(t, "/items", `{"name":"Integration Widget","price":9.99}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("create: missing id")
	}

	resp, body = postJSON(t, "/items/"+id+"/update_price", `{"price":12.5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update_price: expected 200, got %d", resp.StatusCode)
	}
	if body["new_price"] != 12.5 {
		t.Fatalf("update_price: expected 12.5, got %v", body["new_price"])
	}

	getResp, err := http.Get(baseURL() + "/items/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	var item map[string]any
	_ = json.NewDecoder(getResp.Body).Decode(&item)
	if item["price"] != 12.5 || item["name"] != "Integration Widget" {
		t.Fatalf("unexpected item after price update: %v", item)
	}

	req, _ := http.NewRequest(http.MethodDelete, baseURL()+"/items/"+id, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", delResp.StatusCode)
	}
}

func TestIntegration_UpdatePriceMissing(t *testing.T) {
	waitReady(t)
	resp, _ := postJSON(t, "/items/integration-missing-key/update_price", `{"price":5}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_PublishIdempotent(t *testing.T) {
	waitReady(t)
	reqID := fmt.Sprintf("it-%d", time.Now().UnixNano())

	resp, body := postJSON(t, "/publish", fmt.Sprintf(`{"message":"hello","request_id":%q}`, reqID))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if body["messageId"] == "" {
		t.Fatalf("expected messageId, got %v", body)
	}

	resp, body = postJSON(t, "/publish", fmt.Sprintf(`{"message":"hello","request_id":%q}`, reqID))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 on replay, got %d", resp.StatusCode)
	}
	if body["message"] != "Already processed" {
		t.Fatalf("expected replay body, got %v", body)
	}
}

func TestIntegration_OpenAPIServed(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
