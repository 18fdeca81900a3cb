package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusLifecycle(t *testing.T) {
	assert.True(t, JobStatusPending.Runnable())
	assert.True(t, JobStatusProcessing.Runnable())
	for _, s := range []JobStatus{JobStatusExtracting, JobStatusTranslating, JobStatusBuilding, JobStatusDone, JobStatusError} {
		assert.False(t, s.Runnable(), s)
	}

	assert.True(t, JobStatusDone.Terminal())
	assert.True(t, JobStatusError.Terminal())
	assert.False(t, JobStatusBuilding.Terminal())

	assert.False(t, JobStatus("QUEUED").Valid())
	assert.Equal(t, -1, JobStatusError.Rank())

	statuses := JobStatuses()
	for i := 1; i < len(statuses)-1; i++ {
		assert.Less(t, JobStatus(statuses[i-1]).Rank(), JobStatus(statuses[i]).Rank())
	}
}

func TestTranslatedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"deed.pdf", "deed_translated.pdf"},
		{"folder/Sale Deed.PDF", "Sale Deed_translated.pdf"},
		{"noext", "noext_translated.pdf"},
		{"", "document_translated.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslatedName(tt.in))
		})
	}
}

func TestUploadChecks(t *testing.T) {
	assert.True(t, IsAllowedFile("a.PDF"))
	assert.False(t, IsAllowedFile("a.docx"))
	assert.True(t, IsAllowedMimeType(" Application/PDF "))
	assert.False(t, IsAllowedMimeType("image/png"))
}

func TestLanguages(t *testing.T) {
	code, ok := CanonicalLang("gu-IN")
	assert.True(t, ok)
	assert.Equal(t, "gu", code)

	_, ok = CanonicalLang("")
	assert.False(t, ok)

	assert.Equal(t, "English", LanguageName("en"))
	assert.Contains(t, LanguageName("gu"), "Gujarati")
	assert.Equal(t, "French", LanguageName("fr"))
	assert.Equal(t, "!!", LanguageName("!!"))
}
