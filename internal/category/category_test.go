package category

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"json_array", `["Food and Drink","Restaurants"]`, []string{"Food and Drink", "Restaurants"}},
		{"single_quoted_list", `['Food and Drink', 'Restaurants']`, []string{"Food and Drink", "Restaurants"}},
		{"bare_label", "Travel", []string{"Travel"}},
		{"comma_list", "Food and Drink, Entertainment", []string{"Food and Drink", "Entertainment"}},
		{"unquoted_brackets", "[Food and Drink, Restaurants]", []string{"Food and Drink", "Restaurants"}},
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"empty_json_array", "[]", []string{}},
		{"json_with_padding", `[" Travel ", ""]`, []string{"Travel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseEncodedRoundTrip(t *testing.T) {
	// Every source shape must survive an Encode/Parse cycle unchanged.
	shapes := []string{
		`["Food and Drink","Restaurants"]`,
		`['Food and Drink', 'Restaurants']`,
		"Food and Drink, Restaurants",
	}
	want := []string{"Food and Drink", "Restaurants"}

	for _, raw := range shapes {
		if got := Parse(Encode(Parse(raw))); !reflect.DeepEqual(got, want) {
			t.Errorf("round trip of %q = %#v, want %#v", raw, got, want)
		}
	}
}

func TestEncode(t *testing.T) {
	if got := Encode(nil); got != "[]" {
		t.Errorf("Encode(nil) = %q, want []", got)
	}
	if got := Encode([]string{"Travel"}); got != `["Travel"]` {
		t.Errorf(`Encode([Travel]) = %q, want ["Travel"]`, got)
	}
}

func TestContains(t *testing.T) {
	raw := `["Food and Drink","Restaurants"]`

	if !Contains(raw, Food) {
		t.Error("expected raw to contain Food and Drink")
	}
	if Contains(raw, "Food") {
		t.Error("matching must be exact, not substring")
	}
	if Contains(raw, "food and drink") {
		t.Error("matching must be case-sensitive")
	}
}

func TestFirst(t *testing.T) {
	if got := First(`["Travel","Airlines"]`); got != "Travel" {
		t.Errorf("First = %q, want Travel", got)
	}
	if got := First(""); got != "" {
		t.Errorf("First of empty = %q, want empty", got)
	}
}
