package jobpage

import "testing"

func TestText(t *testing.T) {
	t.Parallel()

	document := `<!DOCTYPE html>
<html>
<head><title>Careers</title><style>body { color: red; }</style></head>
<body>
<script>var tracking = "ignore me";</script>
<h1>Data Scientist</h1>
<div>Requirements:<ul><li>Python &amp; SQL</li><li>Docker</li></ul></div>
<p>Apply   at <a href="https://example.com/apply">our site</a><br/>today</p>
</body>
</html>`

	want := "Data Scientist\nRequirements:\nPython & SQL\nDocker\nApply at our site\ntoday"
	if got := Text(document); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "tags", input: "<b>Senior</b> <i>Engineer</i>", want: "Senior Engineer"},
		{name: "urls", input: "Apply at https://jobs.example.com/123?ref=x now", want: "Apply at now"},
		{name: "punctuation", input: "Python, C++ & SQL!", want: "Python C SQL"},
		{name: "newlines keep words apart", input: "Python\nDocker\tKubernetes", want: "Python Docker Kubernetes"},
		{name: "non ascii", input: "Café résumé", want: "Caf rsum"},
		{name: "empty", input: "  \n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.input); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
