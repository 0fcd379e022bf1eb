package envutil

import "testing"

func TestInt64FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SC_TEST_INT", "abc")
	if got := Int64("SC_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int64: want=7 got=%d", got)
	}
	t.Setenv("SC_TEST_INT", "10000")
	if got := Int64("SC_TEST_INT", 7, nil); got != 10000 {
		t.Fatalf("Int64: want=10000 got=%d", got)
	}
}

func TestBoolAndString(t *testing.T) {
	t.Setenv("SC_TEST_BOOL", "off")
	if Bool("SC_TEST_BOOL", true, nil) {
		t.Fatalf("Bool: want=false")
	}
	t.Setenv("SC_TEST_STR", "  shared ")
	if got := String("SC_TEST_STR", "copy", nil); got != "shared" {
		t.Fatalf("String: want=shared got=%q", got)
	}
	if got := String("SC_TEST_UNSET_STR", "copy", nil); got != "copy" {
		t.Fatalf("String default: want=copy got=%q", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("SC_TEST_LIST", "a, ,b")
	got := List("SC_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
}

func TestFloat64(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.25")
	if got := Float64("ENVUTIL_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("float: want=0.25 got=%v", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "lots")
	if got := Float64("ENVUTIL_TEST_FLOAT", 1, nil); got != 1 {
		t.Fatalf("garbage: want=1 got=%v", got)
	}
}
