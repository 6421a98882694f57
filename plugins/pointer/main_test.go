package main

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		action string
		params string
		want   []string
	}{
		{"move", `{"x":10.4,"y":20.6}`, []string{"mousemove", "10", "21"}},
		{"button-down", `{"button":"left"}`, []string{"mousedown", "1"}},
		{"button-up", `{"button":"right"}`, []string{"mouseup", "3"}},
		{"click", `{}`, []string{"click", "1"}},
		{"click", `{"button":"middle"}`, []string{"click", "2"}},
	}

	for _, tt := range tests {
		got, err := buildArgs(Request{Action: tt.action, Params: json.RawMessage(tt.params)})
		if err != nil {
			t.Errorf("buildArgs(%s, %s) error = %v", tt.action, tt.params, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("buildArgs(%s, %s) = %v, want %v", tt.action, tt.params, got, tt.want)
		}
	}
}

func TestBuildArgs_Errors(t *testing.T) {
	cases := []Request{
		{Action: "scroll"},
		{Action: "click", Params: json.RawMessage(`{"button":"thumb"}`)},
		{Action: "move", Params: json.RawMessage(`not json`)},
	}
	for _, req := range cases {
		if _, err := buildArgs(req); err == nil {
			t.Errorf("buildArgs(%+v) expected error", req)
		}
	}
}
