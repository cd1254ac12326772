package utils

import "testing"

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("DOGFIGHT_TEST_STR", "hello")
	if got := GetEnvDefault("DOGFIGHT_TEST_STR", "fallback"); got != "hello" {
		t.Errorf("got %s, want hello", got)
	}
	if got := GetEnvDefault("DOGFIGHT_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("got %s, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("DOGFIGHT_TEST_INT", "42")
	if got := GetEnvInt("DOGFIGHT_TEST_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if got := GetEnvInt("DOGFIGHT_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("got %d, want 7", got)
	}

	t.Setenv("DOGFIGHT_TEST_INT_BAD", "not-a-number")
	if got := GetEnvInt("DOGFIGHT_TEST_INT_BAD", 7); got != 7 {
		t.Errorf("got %d, want 7 on parse failure", got)
	}
}
