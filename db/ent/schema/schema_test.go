package schema

import (
	"testing"

	"entgo.io/ent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringValidators(t *testing.T, fields []ent.Field, name string) []func(string) error {
	t.Helper()
	for _, f := range fields {
		d := f.Descriptor()
		if d.Name != name {
			continue
		}
		out := make([]func(string) error, 0, len(d.Validators))
		for _, v := range d.Validators {
			fn, ok := v.(func(string) error)
			require.True(t, ok, "validator on %s", name)
			out = append(out, fn)
		}
		return out
	}
	t.Fatalf("no field %q", name)
	return nil
}

func check(vs []func(string) error, s string) error {
	for _, v := range vs {
		if err := v(s); err != nil {
			return err
		}
	}
	return nil
}

func TestTranslationJob_Validators(t *testing.T) {
	fields := TranslationJob{}.Fields()

	status := stringValidators(t, fields, "status")
	for _, ok := range []string{"pending", "processing", "extracting", "translating", "building", "done", "error"} {
		assert.NoError(t, check(status, ok), ok)
	}
	assert.ErrorContains(t, check(status, "queued"), `"queued" is not one of`)

	lang := stringValidators(t, fields, "src_lang")
	assert.NoError(t, check(lang, "gu"))
	assert.ErrorContains(t, check(lang, "GU"), `must be stored as "gu"`)
	assert.Error(t, check(lang, "not a language"))
}

func TestFile_Descriptors(t *testing.T) {
	var names []string
	for _, f := range (File{}).Fields() {
		names = append(names, f.Descriptor().Name)
	}
	assert.Equal(t, []string{"id", "original_name", "bucket", "storage_path", "content_type", "size_bytes", "created_at"}, names)

	assert.Error(t, check(stringValidators(t, (File{}).Fields(), "original_name"), ""))
}
