package sim

import "testing"

func TestCase_OnsetTime(t *testing.T) {
	c := &Case{ExposureTime: 3.5, Incubation: 5.8}
	if got := c.OnsetTime(); got != 9.3 {
		t.Errorf("OnsetTime() = %v, want 9.3", got)
	}
}

func TestCase_IsolatedBefore_TieIsPrevented(t *testing.T) {
	c := &Case{Isolated: true, IsolationTime: 10}

	if c.IsolatedBefore(9.999) {
		t.Error("contact before isolation must not be blocked")
	}
	if !c.IsolatedBefore(10) {
		t.Error("contact at exactly the isolation instant must be blocked")
	}
	if !c.IsolatedBefore(10.001) {
		t.Error("contact after isolation must be blocked")
	}

	never := &Case{}
	if never.IsolatedBefore(1e9) {
		t.Error("a never-isolated case blocks nothing")
	}
}

func TestCase_CheckInvariants(t *testing.T) {
	parent := &Case{ID: 0, Generation: 2, ExposureTime: 4}

	tests := []struct {
		name    string
		c       *Case
		parent  *Case
		wantErr bool
	}{
		{
			"valid seed",
			&Case{ID: 0, ParentID: NoParent, Generation: 0, Incubation: 5},
			nil,
			false,
		},
		{
			"seed with parent id",
			&Case{ID: 0, ParentID: 7, Generation: 0},
			nil,
			true,
		},
		{
			"seed with nonzero generation",
			&Case{ID: 0, ParentID: NoParent, Generation: 1},
			nil,
			true,
		},
		{
			"valid child",
			&Case{ID: 1, ParentID: 0, Generation: 3, ExposureTime: 6, Incubation: 4},
			parent,
			false,
		},
		{
			"generation mismatch",
			&Case{ID: 1, ParentID: 0, Generation: 5, ExposureTime: 6},
			parent,
			true,
		},
		{
			"exposed before parent",
			&Case{ID: 1, ParentID: 0, Generation: 3, ExposureTime: 1},
			parent,
			true,
		},
		{
			"negative exposure time",
			&Case{ID: 0, ParentID: NoParent, Generation: 0, ExposureTime: -1},
			nil,
			true,
		},
		{
			"negative incubation",
			&Case{ID: 0, ParentID: NoParent, Generation: 0, Incubation: -0.5},
			nil,
			true,
		},
		{
			"isolation before exposure",
			&Case{ID: 1, ParentID: 0, Generation: 3, ExposureTime: 6, Isolated: true, IsolationTime: 5},
			parent,
			true,
		},
		{
			"realized exceeds opportunities",
			&Case{ID: 0, ParentID: NoParent, Generation: 0, Realized: 2, Opportunities: []float64{1}},
			nil,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.checkInvariants(tt.parent)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkInvariants() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
