package theme

import (
	"testing"

	"github.com/muesli/termenv"

	"github.com/theirongolddev/cashpulse/internal/model"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("terminal").Name; got != "terminal" {
		t.Errorf("ByName(terminal) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Errorf("ByName(nope) = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		profile termenv.Profile
		want    string
	}{
		{termenv.Ascii, "terminal"},
		{termenv.ANSI, "terminal"},
		{termenv.ANSI256, "flexoki-dark"},
		{termenv.TrueColor, "flexoki-dark"},
	}
	for _, tt := range tests {
		if got := Detect(tt.profile).Name; got != tt.want {
			t.Errorf("Detect(%v) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestRiskAndScoreColors(t *testing.T) {
	SetActive("flexoki-dark")
	if RiskColor(model.RiskSafe) != Active.Green || RiskColor(model.RiskDanger) != Active.Red {
		t.Error("RiskColor does not follow the palette")
	}
	if ScoreColor(95) != Active.GreenBright || ScoreColor(10) != Active.Red {
		t.Error("ScoreColor extremes do not follow the palette")
	}
}
