package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiModelParsesFunctionCalls(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent") {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"sql_db_query","args":{"query":"SELECT count(*) FROM film"}},"thoughtSignature":"c2ln"}
		]}}]}`))
	}))
	defer srv.Close()

	model, err := NewGeminiModel(context.Background(), GeminiConfig{APIKey: "k", BaseURL: srv.URL, Model: "gemini-test"})
	if err != nil {
		t.Fatalf("NewGeminiModel() error = %v", err)
	}
	reply, err := model.Generate(context.Background(), Request{
		System:   "be useful",
		Messages: []Message{{Role: RoleUser, Content: "How many movies are available?"}},
		Tools:    []ToolSpec{{Name: "sql_db_query", Params: []Param{{Name: "query", Required: true}}}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("tool calls = %#v", reply.ToolCalls)
	}
	call := reply.ToolCalls[0]
	if call.Name != "sql_db_query" || call.Args["query"] != "SELECT count(*) FROM film" {
		t.Fatalf("call = %#v", call)
	}
	if string(call.Signature) != "sig" {
		t.Fatalf("signature = %q", call.Signature)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Fatalf("request without systemInstruction: %#v", body)
	}
	if _, ok := body["tools"]; !ok {
		t.Fatalf("request without tools: %#v", body)
	}
}

func TestGeminiContentsGroupsToolResults(t *testing.T) {
	contents, err := geminiContents([]Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}},
		{Role: RoleTool, Results: []ToolResult{{CallID: "1", Name: "a", Content: "x"}, {CallID: "2", Name: "b", Content: "y"}}},
	})
	if err != nil {
		t.Fatalf("geminiContents() error = %v", err)
	}
	if len(contents) != 3 {
		t.Fatalf("contents = %d", len(contents))
	}
	if contents[1].Role != "model" || len(contents[1].Parts) != 2 {
		t.Fatalf("model content = %#v", contents[1])
	}
	responses := contents[2]
	if responses.Role != "user" || len(responses.Parts) != 2 {
		t.Fatalf("response content = %#v", responses)
	}
	if got := responses.Parts[1].FunctionResponse.Response["output"]; got != "y" {
		t.Fatalf("second response = %#v", got)
	}
}

func TestGeminiDeclarationsMarkRequiredParams(t *testing.T) {
	decls := geminiDeclarations([]ToolSpec{{Name: "sql_db_schema", Params: []Param{
		{Name: "table_names", Required: true},
		{Name: "hint"},
	}}})
	if len(decls) != 1 || len(decls[0].Parameters.Properties) != 2 {
		t.Fatalf("declarations = %#v", decls)
	}
	if len(decls[0].Parameters.Required) != 1 || decls[0].Parameters.Required[0] != "table_names" {
		t.Fatalf("required = %v", decls[0].Parameters.Required)
	}
}
