package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMappingSet_Intersect(t *testing.T) {
	tests := []struct {
		name   string
		then   MappingSet
		orelse MappingSet
		want   []Mapping
	}{
		{
			name:   "one output agrees",
			then:   NewMappingSet(Mapping{2, 0}, Mapping{3, 1}),
			orelse: NewMappingSet(Mapping{2, 0}, Mapping{3, 2}),
			want:   []Mapping{{2, 0}},
		},
		{
			name:   "all passthroughs agree",
			then:   NewMappingSet(Mapping{0, 0}, Mapping{1, 1}),
			orelse: NewMappingSet(Mapping{0, 0}, Mapping{1, 1}),
			want:   []Mapping{{0, 0}, {1, 1}},
		},
		{
			name:   "one-sided passthrough",
			then:   NewMappingSet(Mapping{0, 0}),
			orelse: NewMappingSet(),
			want:   []Mapping{},
		},
		{
			name:   "crossed operands",
			then:   NewMappingSet(Mapping{0, 0}, Mapping{1, 1}),
			orelse: NewMappingSet(Mapping{0, 1}, Mapping{1, 0}),
			want:   []Mapping{},
		},
		{
			// matching by output index alone would wrongly accept this
			name:   "same output different source",
			then:   NewMappingSet(Mapping{0, 0}, Mapping{1, 0}),
			orelse: NewMappingSet(Mapping{0, 1}, Mapping{1, 0}),
			want:   []Mapping{{1, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.then.Intersect(tt.orelse).Sorted()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Intersect mismatch (-want +got):\n%s", diff)
			}
			rev := tt.orelse.Intersect(tt.then).Sorted()
			if diff := cmp.Diff(got, rev); diff != "" {
				t.Errorf("Intersect not symmetric (-forward +reverse):\n%s", diff)
			}
		})
	}
}

func TestMappingSet_Union(t *testing.T) {
	a := NewMappingSet(Mapping{0, 0})
	b := NewMappingSet(Mapping{0, 0}, Mapping{1, 2})
	got := a.Union(b).Sorted()
	if diff := cmp.Diff([]Mapping{{0, 0}, {1, 2}}, got); diff != "" {
		t.Errorf("Union mismatch (-want +got):\n%s", diff)
	}
	if a.Len() != 1 {
		t.Error("Union must not modify its receiver")
	}
}

func TestMappingSet_Source(t *testing.T) {
	s := NewMappingSet(Mapping{2, 1}, Mapping{4, 0})
	if src, ok := s.Source(2); !ok || src != 1 {
		t.Errorf("Source(2) = %d, %v; want 1, true", src, ok)
	}
	if _, ok := s.Source(3); ok {
		t.Error("Source(3) should not be found")
	}
}

func TestMappingSet_String(t *testing.T) {
	s := NewMappingSet(Mapping{3, 1}, Mapping{0, 2})
	if got, want := s.String(), "{(0,2) (3,1)}"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	if got := NewMappingSet().String(); got != "{}" {
		t.Errorf("empty String = %q", got)
	}
}

func TestResolve_DropsOperandsOutOfRange(t *testing.T) {
	then := NewMappingSet(Mapping{0, 0}, Mapping{1, 5})
	orelse := NewMappingSet(Mapping{0, 0}, Mapping{1, 5})
	got := Resolve(then, orelse, 2).Sorted()
	if diff := cmp.Diff([]Mapping{{0, 0}}, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}
