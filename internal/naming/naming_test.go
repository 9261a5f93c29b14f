package naming

import "testing"

func TestSnakeIdentifierIsUnchangedUnderSnakeCase(t *testing.T) {
	if got := Apply("foo_bar", SnakeCase); got != "foo_bar" {
		t.Errorf("expected foo_bar, got %s", got)
	}
}

func TestSnakeIdentifierBecomesCamelCase(t *testing.T) {
	if got := Apply("foo_bar", CamelCase); got != "fooBar" {
		t.Errorf("expected fooBar, got %s", got)
	}
}

func TestCamelToSnakeIsTheInverseOfToCamel(t *testing.T) {
	cases := []string{"foo_bar", "count", "max_value_seen"}
	for _, c := range cases {
		camel := ToCamel(c)
		if got := ToSnake(camel); got != c {
			t.Errorf("round trip failed: %s -> %s -> %s", c, camel, got)
		}
	}
}
