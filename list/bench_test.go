package list

import "testing"

// BenchmarkList_Append measures tail insertion.
func BenchmarkList_Append(b *testing.B) {
	l := New[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Append(i)
	}
}

// BenchmarkList_RemoveAt measures handle-based removal.
func BenchmarkList_RemoveAt(b *testing.B) {
	l := New[int]()
	locs := make([]Location[int], b.N)
	for i := 0; i < b.N; i++ {
		locs[i] = l.Append(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = l.RemoveAt(locs[i])
	}
}

// BenchmarkList_ValueAt measures handle resolution.
func BenchmarkList_ValueAt(b *testing.B) {
	l := New[int]()
	loc := l.Append(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = l.ValueAt(loc)
	}
}

// BenchmarkList_AppendRemoveFirst measures queue-style churn.
func BenchmarkList_AppendRemoveFirst(b *testing.B) {
	l := New[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Append(i)
		_ = l.RemoveFirst()
	}
}
