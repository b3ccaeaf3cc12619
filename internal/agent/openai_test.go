package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIModelSendsToolsAndParsesCalls(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null,"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"sql_db_schema","arguments":"{\"table_names\":\"film, actor\"}"}}
		]}}]}`))
	}))
	defer srv.Close()

	model, err := NewOpenAIModel(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "secret", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("NewOpenAIModel() error = %v", err)
	}
	reply, err := model.Generate(context.Background(), Request{
		System: "be useful",
		Messages: []Message{
			{Role: RoleUser, Content: "Show me some comedy movies"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_0", Name: "sql_db_list_tables", Args: map[string]any{}}}},
			{Role: RoleTool, Results: []ToolResult{{CallID: "call_0", Name: "sql_db_list_tables", Content: "actor, film"}}},
		},
		Tools: []ToolSpec{{Name: "sql_db_schema", Description: "schema", Params: []Param{{Name: "table_names", Required: true}}}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(reply.ToolCalls) != 1 || reply.ToolCalls[0].Name != "sql_db_schema" || reply.ToolCalls[0].ID != "call_1" {
		t.Fatalf("tool calls = %#v", reply.ToolCalls)
	}
	if reply.ToolCalls[0].Args["table_names"] != "film, actor" {
		t.Fatalf("args = %#v", reply.ToolCalls[0].Args)
	}

	if captured.Model != "gpt-test" {
		t.Fatalf("model = %q", captured.Model)
	}
	roles := []string{}
	for _, msg := range captured.Messages {
		roles = append(roles, msg.Role)
	}
	if len(roles) != 4 || roles[0] != "system" || roles[1] != "user" || roles[2] != "assistant" || roles[3] != "tool" {
		t.Fatalf("roles = %v", roles)
	}
	if captured.Messages[3].ToolCallID != "call_0" {
		t.Fatalf("tool_call_id = %q", captured.Messages[3].ToolCallID)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Function.Name != "sql_db_schema" {
		t.Fatalf("tools = %#v", captured.Tools)
	}
}

func TestOpenAIModelReturnsFinalText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  1000\n"}}]}`))
	}))
	defer srv.Close()

	model, err := NewOpenAIModel(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAIModel() error = %v", err)
	}
	reply, err := model.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "count"}}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply.Content != "1000" || len(reply.ToolCalls) != 0 {
		t.Fatalf("reply = %#v", reply)
	}
}

func TestOpenAIModelSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	model, err := NewOpenAIModel(OpenAIConfig{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewOpenAIModel() error = %v", err)
	}
	if _, err := model.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "q"}}}); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestNewOpenAIModelRequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIModel(OpenAIConfig{BaseURL: "http://localhost"}); err == nil {
		t.Fatal("expected error")
	}
}
