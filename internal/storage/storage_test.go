package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentKey(t *testing.T) {
	key := AttachmentKey(4, "B-0000ABCD", "../../etc/my budget.pdf")
	assert.True(t, strings.HasPrefix(key, "calls/4/B-0000ABCD/"), key)
	assert.True(t, strings.HasSuffix(key, "-my_budget.pdf"), key)
	assert.NotContains(t, key, "..")

	other := AttachmentKey(4, "B-0000ABCD", "../../etc/my budget.pdf")
	assert.NotEqual(t, key, other)
}

func TestAttachmentKey_WindowsPathAndEmpty(t *testing.T) {
	assert.True(t, strings.HasSuffix(AttachmentKey(1, "B-1", `C:\docs\plan.docx`), "-plan.docx"))
	assert.True(t, strings.HasSuffix(AttachmentKey(1, "B-1", ""), "-file"))
}
