package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"  Acme   Corp ":  "Acme Corp",
		"<b>Jane</b> Doe": "Jane Doe",
		"&lt;script&gt;alert(1)&lt;/script&gt;Bob": "alert(1)Bob",
		"Smith &amp; Sons":                         "Smith & Sons",
		"line\nbreak\tand tab":                     "line break and tab",
		"":                                         "",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasMarkup(t *testing.T) {
	if !HasMarkup("<img src=x onerror=alert(1)>") {
		t.Error("expected tag to be detected")
	}
	if HasMarkup("Smith & Sons <3") {
		t.Error("plain text must not count as markup")
	}
}
