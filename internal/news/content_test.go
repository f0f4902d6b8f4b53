package news

import "testing"

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Asamblea&nbsp;general</p>\n<p>del   <b>CICB</b></p>")
	want := "Asamblea general del CICB"
	if got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"short content untouched", "<p>Hola mundo</p>", 50, "Hola mundo"},
		{"cut at word boundary", "<p>Convocatoria a la asamblea ordinaria</p>", 20, "Convocatoria a la…"},
		{"no limit", "<i>uno dos</i>", 0, "uno dos"},
		{"non-breaking spaces are word breaks", "Colegio&nbsp;de&nbsp;Ingenieros&nbsp;Civiles", 15, "Colegio de…"},
		{"multibyte runes", "Ingeniería civil en Bolivia", 10, "Ingeniería…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.content, tt.n); got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.content, tt.n, got, tt.want)
			}
		})
	}
}
