package openapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func loadTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return idx
}

func decode(t *testing.T, body string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		t.Fatalf("bad test body %q: %v", body, err)
	}
	return v
}

func TestLoad_embeddedDocument(t *testing.T) {
	idx := loadTestIndex(t)
	ids := idx.OperationIDs()
	if len(ids) != 32 {
		t.Fatalf("OperationIDs() = %v (len %d), want 32 operations", ids, len(ids))
	}
	for _, id := range []string{"addAttribute", "editAttribute", "applyAttribute", "getInheritedAttributes", "deleteManufacturer", "toggleParentInheritance"} {
		if _, ok := idx.Operation(id); !ok {
			t.Errorf("operation %s missing", id)
		}
	}
}

func TestLoadData_invalid(t *testing.T) {
	if _, err := LoadData([]byte("openapi: 3.0.3\ninfo: {}\n")); err == nil {
		t.Fatal("LoadData() with incomplete document should return error")
	}
	if _, err := LoadData([]byte("{not yaml")); err == nil {
		t.Fatal("LoadData() with malformed document should return error")
	}
}

func TestLookup(t *testing.T) {
	idx := loadTestIndex(t)

	op, ok := idx.Lookup("put", "/api/categories/{id}/attributes/{attributeId}")
	if !ok {
		t.Fatal("Lookup(PUT apply) not found")
	}
	if op.ID != "applyAttribute" || op.Method != "PUT" {
		t.Errorf("op = %+v", op)
	}
	if op.Body != nil {
		t.Error("applyAttribute should not take a body")
	}

	op, ok = idx.Lookup("PATCH", "/api/attributes/{id}")
	if !ok || op.ID != "editAttribute" || op.Body == nil || !op.BodyRequired {
		t.Errorf("Lookup(PATCH attribute) = %+v, %v", op, ok)
	}

	if _, ok := idx.Lookup("GET", "/api/nowhere"); ok {
		t.Error("Lookup() on unknown path should fail")
	}
}

func TestDocument(t *testing.T) {
	idx := loadTestIndex(t)
	data, err := idx.Document()
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Document() is not JSON: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("openapi = %v", doc["openapi"])
	}
}

func TestValidateRequest_valid(t *testing.T) {
	idx := loadTestIndex(t)

	tests := []struct {
		op   string
		body string
	}{
		{"addAttribute", `{"label":"Height","type":"number"}`},
		{"addAttribute", `{"label":"Colour","type":"dropdown","dropdown_options":["Red","Blue"],"applied_to_categories":["boiler"],"order":2}`},
		{"editAttribute", `{}`},
		{"editAttribute", `{"label":"Width","is_required":true}`},
		{"addCategory", `{"name":"Boiler","parent_id":null}`},
		{"updateCategory", `{"parent_id":"heating"}`},
		{"reorderAttributes", `{"attribute_ids":[]}`},
		{"setParentInheritance", `{"enabled":false}`},
		{"addManufacturer", `{"name":"Acme"}`},
	}
	for _, tt := range tests {
		if errs := idx.ValidateRequest(tt.op, decode(t, tt.body)); len(errs) > 0 {
			t.Errorf("ValidateRequest(%s, %s) = %+v, want none", tt.op, tt.body, errs)
		}
	}
}

func TestValidateRequest_invalid(t *testing.T) {
	idx := loadTestIndex(t)

	tests := []struct {
		name    string
		op      string
		body    string
		field   string
		missing bool
	}{
		{"missing label", "addAttribute", `{"type":"text"}`, "label", true},
		{"blank label", "addAttribute", `{"label":"   ","type":"text"}`, "label", false},
		{"unknown type", "addAttribute", `{"label":"X","type":"colour"}`, "type", false},
		{"negative order", "addAttribute", `{"label":"X","type":"text","order":-1}`, "order", false},
		{"blank option", "addAttribute", `{"label":"X","type":"dropdown","dropdown_options":["a",""]}`, "dropdown_options[1]", false},
		{"unknown field", "editAttribute", `{"lable":"X"}`, "", false},
		{"empty category patch", "updateCategory", `{}`, "", false},
		{"wrong type", "setParentInheritance", `{"enabled":"yes"}`, "enabled", false},
		{"missing ids", "reorderAttributes", `{}`, "attribute_ids", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := idx.ValidateRequest(tt.op, decode(t, tt.body))
			if len(errs) == 0 {
				t.Fatal("ValidateRequest() should report an error")
			}
			if tt.field == "" {
				return
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
					if e.Missing != tt.missing {
						t.Errorf("Missing = %v, want %v", e.Missing, tt.missing)
					}
				}
			}
			if !found {
				t.Errorf("errors = %+v, want one on %s", errs, tt.field)
			}
		})
	}
}

func TestValidateRequest_body(t *testing.T) {
	idx := loadTestIndex(t)

	errs := idx.ValidateRequest("addAttribute", nil)
	if len(errs) != 1 || !errs[0].Missing {
		t.Errorf("missing body = %+v", errs)
	}
	if errs := idx.ValidateRequest("applyAttribute", nil); len(errs) != 0 {
		t.Errorf("bodiless operation = %+v", errs)
	}
	errs = idx.ValidateRequest("noSuchOperation", nil)
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "not found") {
		t.Errorf("unknown operation = %+v", errs)
	}
	if errs := idx.ValidateRequest("addAttribute", decode(t, `[1,2]`)); len(errs) == 0 {
		t.Error("array body should be rejected")
	}
}

func TestJSONField(t *testing.T) {
	tests := map[string][]string{
		"":                    nil,
		"label":               {"label"},
		"dropdown_options[1]": {"dropdown_options", "1"},
		"a.b[0].c":            {"a", "b", "0", "c"},
	}
	for want, pointer := range tests {
		if got := jsonField(pointer); got != want {
			t.Errorf("jsonField(%v) = %q, want %q", pointer, got, want)
		}
	}
}
