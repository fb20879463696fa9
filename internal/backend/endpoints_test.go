package backend

import "testing"

func TestScopeURLs_Flat(t *testing.T) {
	s := Scope{APIPrefix: "/api/admin"}

	cases := map[string]string{
		s.RecognizeURL("s1"): "/api/admin/stores/s1/menu/recognize",
		s.RecognizeURL(""):   "/api/admin/menu/recognize",
		s.MenuURL("s1"):      "/api/admin/stores/s1/menu",
		s.MenuSaveURL("s1"):  "/api/admin/stores/s1/menu/save",
		s.MenuFetchURL("s1"): "/api/admin/stores/s1/menu/compare",
		s.StoresURL():        "/api/admin/stores",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestScopeURLs_Grouped(t *testing.T) {
	s := Scope{APIPrefix: "/api/line", GroupCode: "g42"}

	cases := map[string]string{
		s.RecognizeURL("s1"): "/api/line/stores/by-code/g42/s1/menu/recognize",
		s.MenuURL("s1"):      "/api/line/stores/by-code/g42/s1/menu",
		s.MenuSaveURL("s1"):  "/api/line/stores/by-code/g42/s1/menu/save",
		s.MenuFetchURL("s1"): "/api/line/stores/by-code/g42/s1/menu",
		s.StoresURL():        "/api/line/stores/by-code/g42",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

// The observed routing uses the ungrouped recognize path when no target
// store is selected, with or without a group code.
func TestScopeURLs_GroupedWithoutStoreCollapses(t *testing.T) {
	s := Scope{APIPrefix: "/api/line", GroupCode: "g42"}
	if got := s.RecognizeURL(""); got != "/api/line/menu/recognize" {
		t.Fatalf("expected ungrouped recognize path, got %s", got)
	}
}

func TestScopeURLs_EscapesGroupCode(t *testing.T) {
	s := Scope{APIPrefix: "/api/line", GroupCode: "g 4/2"}
	if got := s.StoresURL(); got != "/api/line/stores/by-code/g%204%2F2" {
		t.Fatalf("group code must be path-escaped, got %s", got)
	}
}
