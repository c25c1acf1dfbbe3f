package skills

import (
	"fmt"
	"reflect"
	"testing"
)

func TestComputeFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resume  []string
		job     []string
		percent float64
		matched []string
	}{
		{
			name:    "empty job skills score zero",
			resume:  []string{"Python", "SQL"},
			job:     nil,
			percent: 0,
			matched: []string{},
		},
		{
			name:    "empty resume skills score zero",
			resume:  nil,
			job:     []string{"Python"},
			percent: 0,
			matched: []string{},
		},
		{
			name:    "both empty",
			percent: 0,
			matched: []string{},
		},
		{
			name:    "case insensitive",
			resume:  []string{"Python"},
			job:     []string{"python"},
			percent: 100,
			matched: []string{"python"},
		},
		{
			name:    "resume superset covers job",
			resume:  []string{"Python", "SQL"},
			job:     []string{"Python"},
			percent: 100,
			matched: []string{"python"},
		},
		{
			name:    "job denominator",
			resume:  []string{"Python"},
			job:     []string{"Python", "SQL"},
			percent: 50,
			matched: []string{"python"},
		},
		{
			name:    "rounds to two decimals",
			resume:  []string{"Python", "Docker", "Communication"},
			job:     []string{"Python", "TensorFlow", "Docker"},
			percent: 66.67,
			matched: []string{"docker", "python"},
		},
		{
			name:    "duplicates in job collapse",
			resume:  []string{"go"},
			job:     []string{"Go", "GO", "go", "Rust"},
			percent: 50,
			matched: []string{"go"},
		},
		{
			name:    "no synonym resolution",
			resume:  []string{"python3", "ML"},
			job:     []string{"Python", "Machine Learning"},
			percent: 0,
			matched: []string{},
		},
		{
			name:    "whitespace is significant",
			resume:  []string{" python"},
			job:     []string{"python"},
			percent: 0,
			matched: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ComputeFit(tt.resume, tt.job)
			if got.FitPercentage != tt.percent {
				t.Fatalf("expected fit %v, got %v", tt.percent, got.FitPercentage)
			}
			if got.MatchedSkills == nil {
				t.Fatalf("expected non-nil matched skills")
			}
			if !reflect.DeepEqual(got.MatchedSkills, tt.matched) {
				t.Fatalf("expected matched %v, got %v", tt.matched, got.MatchedSkills)
			}
		})
	}
}

func TestComputeFitDuplicateInsensitive(t *testing.T) {
	t.Parallel()

	dup := ComputeFit([]string{"Python", "python", "PYTHON"}, []string{"python"})
	single := ComputeFit([]string{"Python"}, []string{"python"})

	if !reflect.DeepEqual(dup, single) {
		t.Fatalf("expected %+v, got %+v", single, dup)
	}
}

func TestComputeFitIsNotSymmetric(t *testing.T) {
	t.Parallel()

	a := []string{"Python", "SQL"}
	b := []string{"Python"}

	if got := ComputeFit(a, b).FitPercentage; got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := ComputeFit(b, a).FitPercentage; got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestComputeFitRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		matched, total int
		want           float64
	}{
		{1, 32, 3.12},
		{3, 32, 9.38},
		{1, 64, 1.56},
		{2, 3, 66.67},
		{1, 8, 12.5},
	}

	for _, tt := range tests {
		resume := make([]string, 0, tt.matched)
		job := make([]string, 0, tt.total)
		for i := 0; i < tt.total; i++ {
			label := fmt.Sprintf("skill-%d", i)
			job = append(job, label)
			if i < tt.matched {
				resume = append(resume, label)
			}
		}
		if got := ComputeFit(resume, job).FitPercentage; got != tt.want {
			t.Fatalf("%d of %d: expected %v, got %v", tt.matched, tt.total, tt.want, got)
		}
	}
}

func TestComputeFitBounds(t *testing.T) {
	t.Parallel()

	resumes := [][]string{nil, {"a"}, {"a", "b", "c"}, {"A", "x", "y", "z"}}
	jobs := [][]string{{"a"}, {"a", "b"}, {"b", "c", "d"}, {"x", "y", "z", "a", "q", "r", "s"}}

	for _, r := range resumes {
		for _, j := range jobs {
			got := ComputeFit(r, j)
			if got.FitPercentage < 0 || got.FitPercentage > 100 {
				t.Fatalf("fit out of bounds for %v vs %v: %v", r, j, got.FitPercentage)
			}
			if len(got.MatchedSkills) > NewSet(j).Len() {
				t.Fatalf("more matches than job skills for %v vs %v", r, j)
			}
		}
	}
}

func TestMissing(t *testing.T) {
	t.Parallel()

	got := Missing([]string{"Python", "Docker"}, []string{"python", "TensorFlow", "Kubernetes", "tensorflow"})
	want := []string{"kubernetes", "tensorflow"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := Missing(nil, nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSimulate(t *testing.T) {
	t.Parallel()

	resume := []string{"Python", "Docker", "Communication"}
	job := []string{"Python", "TensorFlow", "Docker"}

	got := Simulate(resume, []string{"TensorFlow"}, job)
	if got.FitPercentage != 100 {
		t.Fatalf("expected 100 after adding missing skill, got %v", got.FitPercentage)
	}

	unchanged := Simulate(resume, nil, job)
	if !reflect.DeepEqual(unchanged, ComputeFit(resume, job)) {
		t.Fatalf("expected simulation without additions to equal plain fit")
	}

	if len(resume) != 3 {
		t.Fatalf("simulation must not modify the resume skills")
	}
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	if got := Verdict(FitResult{FitPercentage: 70}, 70); got != VerdictHighFit {
		t.Fatalf("expected %q at threshold, got %q", VerdictHighFit, got)
	}
	if got := Verdict(FitResult{FitPercentage: 69.99}, 70); got != VerdictNeedsImprovement {
		t.Fatalf("expected %q below threshold, got %q", VerdictNeedsImprovement, got)
	}
}
