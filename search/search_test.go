package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deskmesh/deskmesh/core"
)

func officeRecords() []core.Record {
	return []core.Record{
		{"application": "Word", "issue": "Document formatting lost on save", "solution": "Use docx format"},
		{"application": "Excel", "issue": "Excel crashes when opening large files", "solution": "Disable add-ins and increase memory"},
		{"application": "Outlook", "issue": "Cannot send emails", "solution": "Check SMTP settings"},
	}
}

func TestSearch_ExactSubstringFirst(t *testing.T) {
	results, stage := Ranked(officeRecords(), "Excel crashes when opening large files", 5)

	assert.Equal(t, StageExact, stage)
	assert.NotEmpty(t, results)
	assert.Equal(t, "Excel crashes when opening large files", results[0].Field("issue"))
}

func TestSearch_ExactSubstringIsCaseInsensitive(t *testing.T) {
	results, stage := Ranked(officeRecords(), "EXCEL CRASHES", 5)

	assert.Equal(t, StageExact, stage)
	assert.Len(t, results, 1)
	assert.Equal(t, "Excel", results[0].Field("application"))
}

func TestSearch_KeywordStageAfterExactMiss(t *testing.T) {
	records := []core.Record{
		{"issue": "System fails to boot", "category": "Startup", "solution": "Run startup repair"},
	}

	// No record contains the full phrase; "windows" and "boot" survive
	// keyword extraction and "boot" hits the issue field.
	results, stage := Ranked(records, "Windows 11 won't boot", 5)

	assert.Equal(t, StageKeyword, stage)
	assert.Len(t, results, 1)
	assert.Equal(t, "System fails to boot", results[0].Field("issue"))
}

func TestSearch_KeywordScoringPrefersIssueField(t *testing.T) {
	records := []core.Record{
		{"application": "Teams", "issue": "Audio problems in meetings", "solution": "Check microphone: audio settings"},
		{"application": "Audio Mixer", "issue": "Installation fails", "solution": "Reinstall"},
		{"application": "Word", "issue": "Slow startup", "solution": "Disable audio add-in"},
	}

	results, stage := Ranked(records, "no audio during calls", 5)

	assert.Equal(t, StageKeyword, stage)
	// issue-field match (2.0) outranks application (1.5) and other (1.0).
	assert.Equal(t, "Teams", results[0].Field("application"))
	assert.Equal(t, "Audio Mixer", results[1].Field("application"))
	assert.Equal(t, "Word", results[2].Field("application"))
}

func TestSearch_KeywordTiesKeepCollectionOrder(t *testing.T) {
	records := []core.Record{
		{"issue": "Printer offline", "solution": "Restart spooler"},
		{"issue": "Printer jams", "solution": "Clear tray"},
		{"issue": "Monitor flicker", "solution": "Update driver"},
	}

	results, stage := Ranked(records, "broken printer", 5)

	assert.Equal(t, StageKeyword, stage)
	assert.Len(t, results, 2)
	assert.Equal(t, "Printer offline", results[0].Field("issue"))
	assert.Equal(t, "Printer jams", results[1].Field("issue"))
}

func TestFallbackMatches_FirstHitWins(t *testing.T) {
	records := []core.Record{
		{"issue": "Slow performance", "solution": "Close background apps"},
		{"issue": "Printer offline", "solution": "Restart spooler"},
	}

	// The first keyword misses everywhere, the second hits one record.
	results := fallbackMatches(records, []string{"xyzzy", "performance"}, 5)
	assert.Len(t, results, 1)
	assert.Equal(t, "Slow performance", results[0].Field("issue"))
}

func TestFallbackMatches_TriesOnlyFirstThreeKeywords(t *testing.T) {
	records := []core.Record{
		{"issue": "Slow performance", "solution": "Close background apps"},
	}

	// "performance" is the fourth keyword; the cap means it is never
	// retried.
	results := fallbackMatches(records, []string{"aaa1", "bbb2", "ccc3", "performance"}, 5)
	assert.Empty(t, results)
}

func TestSearch_NoMatchAnywhere(t *testing.T) {
	results, stage := Ranked(officeRecords(), "quantum flux capacitor", 5)
	assert.Empty(t, results)
	assert.Equal(t, StageNone, stage)
}

func TestSearch_EmptyQuery(t *testing.T) {
	results, stage := Ranked(officeRecords(), "", 5)
	assert.Empty(t, results)
	assert.Equal(t, StageNone, stage)

	results, stage = Ranked(officeRecords(), "   ", 5)
	assert.Empty(t, results)
	assert.Equal(t, StageNone, stage)
}

func TestSearch_NonPositiveLimit(t *testing.T) {
	assert.Empty(t, Search(officeRecords(), "Excel", 0))
	assert.Empty(t, Search(officeRecords(), "Excel", -1))
}

func TestSearch_LimitTruncates(t *testing.T) {
	records := []core.Record{
		{"issue": "Excel slow"},
		{"issue": "Excel crashes"},
		{"issue": "Excel freezes"},
	}

	results := Search(records, "excel", 2)
	assert.Len(t, results, 2)
	assert.Equal(t, "Excel slow", results[0].Field("issue"))
	assert.Equal(t, "Excel crashes", results[1].Field("issue"))
}

func TestKeywords(t *testing.T) {
	keywords := Keywords("When the Excel, crashes! on startup?")
	assert.Equal(t, []string{"excel", "crashes", "startup"}, keywords)

	assert.Empty(t, Keywords(""))
	assert.Empty(t, Keywords("a an of to"))
	// tokens of length <= 2 are dropped
	assert.Empty(t, Keywords("it is ok"))
}
