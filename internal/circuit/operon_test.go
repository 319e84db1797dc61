package circuit

import (
	"reflect"
	"strings"
	"testing"
)

// part is a placed component with a declared length
func part(kind Kind, name string, position, length int) Component {
	return Component{Kind: kind, Name: name, Length: length}.At(position)
}

func Test_DetectOperons(t *testing.T) {
	type args struct {
		components []Component
		length     int
	}
	type want struct {
		count      int
		cistrons   []int
		warnings   []int
		terminated []bool
		valid      []bool
	}
	tests := []struct {
		name string
		args args
		want want
	}{
		{
			"promoter, rbs, gene, terminator",
			args{
				[]Component{
					part(Promoter, "pLac", 0, 50),
					part(RBS, "B0034", 50, 12),
					part(Gene, "GFP", 62, 720),
					part(Terminator, "B0015", 782, 80),
				},
				1000,
			},
			want{1, []int{1}, []int{0}, []bool{true}, []bool{true}},
		},
		{
			"promoter then promoter",
			args{
				[]Component{
					part(Promoter, "p1", 0, 50),
					part(Promoter, "p2", 60, 50),
					part(RBS, "r", 110, 10),
					part(Gene, "g", 120, 100),
					part(Terminator, "t", 220, 50),
				},
				1000,
			},
			want{2, []int{0, 1}, []int{1, 0}, []bool{false, true}, []bool{false, true}},
		},
		{
			"rbs without gene",
			args{
				[]Component{
					part(Promoter, "p", 0, 50),
					part(RBS, "lonely", 50, 10),
					part(Terminator, "t", 60, 50),
				},
				1000,
			},
			want{1, []int{0}, []int{1}, []bool{true}, []bool{false}},
		},
		{
			"two cistrons",
			args{
				[]Component{
					part(Promoter, "p", 0, 50),
					part(RBS, "r1", 50, 10),
					part(Gene, "g1", 60, 100),
					part(RBS, "r2", 160, 10),
					part(Gene, "g2", 170, 100),
					part(Terminator, "t", 270, 50),
				},
				1000,
			},
			want{1, []int{2}, []int{0}, []bool{true}, []bool{true}},
		},
		{
			"unterminated at strand end",
			args{
				[]Component{
					part(Promoter, "p", 0, 50),
					part(RBS, "r", 50, 10),
					part(Gene, "g", 60, 100),
				},
				1000,
			},
			want{1, []int{1}, []int{0}, []bool{false}, []bool{true}},
		},
		{
			"parts before any promoter are skipped",
			args{
				[]Component{
					part(RBS, "r0", 0, 10),
					part(Gene, "g0", 10, 100),
					part(Terminator, "t0", 110, 50),
				},
				1000,
			},
			want{0, nil, nil, nil, nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectOperons(tt.args.components, tt.args.length)
			if len(got) != tt.want.count {
				t.Fatalf("DetectOperons() returned %d operons, want %d", len(got), tt.want.count)
			}

			for i, op := range got {
				if len(op.Cistrons) != tt.want.cistrons[i] {
					t.Errorf("operon %d has %d cistrons, want %d", i, len(op.Cistrons), tt.want.cistrons[i])
				}
				if len(op.Warnings) != tt.want.warnings[i] {
					t.Errorf("operon %d has warnings %v, want %d", i, op.Warnings, tt.want.warnings[i])
				}
				if op.Terminated() != tt.want.terminated[i] {
					t.Errorf("operon %d terminated = %v, want %v", i, op.Terminated(), tt.want.terminated[i])
				}
				if op.IsValid != tt.want.valid[i] {
					t.Errorf("operon %d IsValid = %v, want %v", i, op.IsValid, tt.want.valid[i])
				}
			}
		})
	}
}

func Test_DetectOperons_incompleteWarning(t *testing.T) {
	got := DetectOperons([]Component{
		part(Promoter, "p1", 0, 50),
		part(Promoter, "p2", 50, 50),
	}, 200)

	if len(got) != 2 {
		t.Fatalf("got %d operons, want 2", len(got))
	}
	if len(got[0].Warnings) != 1 || !strings.Contains(got[0].Warnings[0], "incomplete") {
		t.Errorf("first operon warnings = %v, want an incomplete warning", got[0].Warnings)
	}
	if len(got[1].Warnings) != 0 {
		t.Errorf("second operon warnings = %v, want none", got[1].Warnings)
	}
}

func Test_DetectOperons_unpairedRBS(t *testing.T) {
	got := DetectOperons([]Component{
		part(Promoter, "p", 0, 50),
		part(RBS, "r1", 50, 10),
		part(RBS, "r2", 60, 10),
		part(Gene, "g", 70, 100),
		part(Terminator, "t", 170, 50),
	}, 500)

	op := got[0]
	if len(op.Cistrons) != 1 || op.Cistrons[0].RBS.Name != "r2" {
		t.Fatalf("cistrons = %+v, want one pairing r2 with g", op.Cistrons)
	}
	if len(op.Warnings) != 1 || !strings.Contains(op.Warnings[0], `"r1"`) {
		t.Errorf("warnings = %v, want a pairing failure for r1", op.Warnings)
	}
}

func Test_DetectOperons_tieBreak(t *testing.T) {
	// declared out of causal order, all at one position
	components := []Component{
		part(Terminator, "t", 100, 0),
		part(Gene, "g", 100, 0),
		part(RBS, "r", 100, 0),
		part(Promoter, "p", 100, 0),
	}

	got := DetectOperons(components, 500)
	if len(got) != 1 {
		t.Fatalf("got %d operons, want 1", len(got))
	}
	if len(got[0].Cistrons) != 1 || !got[0].Terminated() {
		t.Errorf("operon = %+v, want one terminated cistron", got[0])
	}
}

func Test_DetectOperons_modifiers(t *testing.T) {
	got := DetectOperons([]Component{
		part(Promoter, "p", 0, 50),
		part(Operator, "lacO", 50, 20),
		part(RBS, "r", 70, 10),
		part(Other, "scar", 80, 6),
		part(Gene, "g", 86, 100),
		part(Terminator, "t", 186, 50),
		part(Other, "spacer", 236, 10),
	}, 500)

	if len(got) != 1 {
		t.Fatalf("got %d operons, want 1", len(got))
	}
	op := got[0]
	if len(op.Cistrons) != 1 {
		t.Errorf("operators and other parts broke the cistron: %+v", op.Cistrons)
	}
	if len(op.Modifiers) != 3 {
		t.Errorf("got %d modifiers, want 3", len(op.Modifiers))
	}
}

func Test_DetectOperons_span(t *testing.T) {
	got := DetectOperons([]Component{
		part(Promoter, "p", 10, 40),
		part(RBS, "r", 50, 10),
		part(Gene, "g", 60, 100),
		part(Terminator, "t", 170, 30),
	}, 500)

	if got[0].StartBP != 10 || got[0].EndBP != 200 {
		t.Errorf("span = [%d, %d), want [10, 200)", got[0].StartBP, got[0].EndBP)
	}

	unterminated := DetectOperons([]Component{
		part(Promoter, "p", 10, 40),
		part(RBS, "r", 50, 10),
		part(Gene, "g", 60, 100),
	}, 500)
	if unterminated[0].EndBP != 160 {
		t.Errorf("unterminated end = %d, want 160", unterminated[0].EndBP)
	}
}

func Test_DetectOperons_unplacedIgnored(t *testing.T) {
	got := DetectOperons([]Component{
		part(Promoter, "p", 0, 50),
		{Kind: Promoter, Name: "floating", Length: 50},
		part(RBS, "r", 50, 10),
		part(Gene, "g", 60, 100),
		part(Terminator, "t", 160, 50),
	}, 500)

	if len(got) != 1 || len(got[0].Warnings) != 0 {
		t.Errorf("unplaced promoter changed detection: %+v", got)
	}
}

func Test_DetectOperons_deterministic(t *testing.T) {
	components := []Component{
		part(Promoter, "p1", 0, 50),
		part(RBS, "r1", 50, 10),
		part(Gene, "g1", 60, 100),
		part(Promoter, "p2", 160, 50),
		part(RBS, "r2", 210, 10),
		part(RBS, "r3", 220, 10),
		part(Gene, "g2", 230, 100),
		part(Terminator, "t", 330, 50),
	}

	first := DetectOperons(components, 1000)
	second := DetectOperons(components, 1000)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("DetectOperons() is not deterministic:\n%+v\n%+v", first, second)
	}
	if first[0].ID != "operon-1" || first[1].ID != "operon-2" {
		t.Errorf("ids = %s, %s", first[0].ID, first[1].ID)
	}
}
