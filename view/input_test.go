package view

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestParsePastedData(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []PastedStudent
	}{
		{
			name: "tab separated",
			in:   "Aarav Patel\tRajesh Patel\nPriya Sharma\tSuresh Sharma",
			want: []PastedStudent{{"Aarav Patel", "Rajesh Patel"}, {"Priya Sharma", "Suresh Sharma"}},
		},
		{
			name: "comma separated with spaces",
			in:   " Rohan Gupta , Anil Gupta ",
			want: []PastedStudent{{"Rohan Gupta", "Anil Gupta"}},
		},
		{
			name: "tab wins over comma",
			in:   "Gupta, Rohan\tGupta, Anil",
			want: []PastedStudent{{"Gupta, Rohan", "Gupta, Anil"}},
		},
		{
			name: "header rows skipped",
			in:   "Student Name\tFather Name\nname,father\nKavya,Deepak",
			want: []PastedStudent{{"Kavya", "Deepak"}},
		},
		{
			name: "short and blank lines ignored",
			in:   "\r\nJustAName\n\n  \nIshaan,Vikram,9876\r\n,,\n",
			want: []PastedStudent{{"Ishaan", "Vikram"}},
		},
		{
			name: "empty fields dropped before counting",
			in:   "Meera,,Ravi",
			want: []PastedStudent{{"Meera", "Ravi"}},
		},
		{name: "nothing usable", in: "hello\nworld"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePastedData(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePastedData(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsReceiptLike(t *testing.T) {
	tests := map[string]bool{
		"RCP-001-JAN26": true,
		"rcp1":          true,
		" RCP ":         false,
		"1234":          true,
		"AB12":          true,
		"INV2026-7":     true,
		"123":           false,
		"Aarav":         false,
		"Priya Sharma":  false,
		"A-12":          false,
		"":              false,
	}
	for q, want := range tests {
		if got := IsReceiptLike(q); got != want {
			t.Errorf("IsReceiptLike(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestSelectionToggle(t *testing.T) {
	s := Selection{}
	if !s.Toggle("March 2026") {
		t.Fatal("first toggle should select")
	}
	if s.Toggle("March 2026") {
		t.Fatal("second toggle should deselect")
	}
	if len(s) != 0 {
		t.Errorf("toggling twice left %v", s.Values())
	}

	s.Add("b")
	s.Add("a")
	s.Add("a")
	if got := s.Values(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Values() = %v", got)
	}
	s.Remove("a")
	if s.Has("a") || !s.Has("b") {
		t.Errorf("Remove left %v", s.Values())
	}
	s.Clear()
	if len(s) != 0 {
		t.Errorf("Clear left %v", s.Values())
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var runs int32
	var done []<-chan struct{}
	for i := 0; i < 5; i++ {
		done = append(done, d.Trigger(func() { atomic.AddInt32(&runs, 1) }))
		time.Sleep(2 * time.Millisecond)
	}
	for i, ch := range done {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("waiter %d never released", i)
		}
	}
	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Errorf("ran %d times, want 1", n)
	}

	// a later burst runs again
	<-d.Trigger(func() { atomic.AddInt32(&runs, 1) })
	if n := atomic.LoadInt32(&runs); n != 2 {
		t.Errorf("ran %d times, want 2", n)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var ran int32
	ch := d.Trigger(func() { atomic.StoreInt32(&ran, 1) })
	d.Stop()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Stop did not release the waiter")
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("stopped run still executed")
	}
}
