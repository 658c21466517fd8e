package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestAzureProviderAnalyze(t *testing.T) {
	var polls int32

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-document:analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "secret" {
			t.Errorf("missing subscription key header")
		}
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) == 1 {
			w.Write([]byte(`{"status":"running"}`))
			return
		}
		w.Write([]byte(`{
			"status": "succeeded",
			"analyzeResult": {
				"modelId": "prebuilt-document",
				"content": "Invoice #42",
				"pages": [{"pageNumber": 1, "lines": [{"content": "Invoice #42"}]}],
				"tables": [{"rowCount": 1, "columnCount": 2, "cells": [
					{"content": "Total", "rowIndex": 0, "columnIndex": 0},
					{"content": "100", "rowIndex": 0, "columnIndex": 1}
				]}],
				"keyValuePairs": [{"key": {"content": "Total"}, "value": {"content": "100"}, "confidence": 0.95}]
			}
		}`))
	})

	srv = httptest.NewServer(mux)
	defer srv.Close()

	provider := NewAzureProvider(srv.URL, "secret", "prebuilt-document")
	provider.PollInterval = time.Millisecond

	result, err := provider.Analyze(context.Background(), []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.FullText != "Invoice #42" {
		t.Errorf("FullText = %q", result.FullText)
	}
	if result.ModelID != "prebuilt-document" {
		t.Errorf("ModelID = %q", result.ModelID)
	}
	if len(result.Pages) != 1 || result.Pages[0].PageNumber != 1 || len(result.Pages[0].Lines) != 1 {
		t.Errorf("Pages = %+v", result.Pages)
	}
	if len(result.Tables) != 1 || result.Tables[0].RowCount != 1 || len(result.Tables[0].Cells) != 2 {
		t.Errorf("Tables = %+v", result.Tables)
	}
	if len(result.KeyValuePairs) != 1 {
		t.Fatalf("KeyValuePairs = %+v", result.KeyValuePairs)
	}
	kv := result.KeyValuePairs[0]
	if kv.Key != "Total" || kv.Value != "100" || kv.Confidence != 0.95 {
		t.Errorf("kv = %+v", kv)
	}
	if atomic.LoadInt32(&polls) < 2 {
		t.Errorf("polls = %d, want at least 2", polls)
	}
}

func TestAzureProviderAnalyzeFailure(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/documentintelligence/documentModels/prebuilt-document:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-2")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/operations/op-2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"corrupt pdf"}}`))
	})

	srv = httptest.NewServer(mux)
	defer srv.Close()

	provider := NewAzureProvider(srv.URL, "secret", "prebuilt-document")
	provider.PollInterval = time.Millisecond

	if _, err := provider.Analyze(context.Background(), []byte("junk"), "application/pdf"); err == nil {
		t.Fatal("expected analysis failure")
	}
}

func TestAzureProviderRejectedSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"401","message":"bad key"}}`))
	}))
	defer srv.Close()

	provider := NewAzureProvider(srv.URL, "wrong", "prebuilt-document")
	provider.PollInterval = time.Millisecond

	if _, err := provider.Analyze(context.Background(), []byte("%PDF"), "application/pdf"); err == nil {
		t.Fatal("expected submission error")
	}
}
