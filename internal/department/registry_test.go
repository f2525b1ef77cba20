package department

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-router/internal/domain"
)

func TestParse_PreservesFileOrder(t *testing.T) {
	r, err := Parse([]byte(`
version: 1
departments:
  - name: Technical Issues
    store: technical_issues
  - name: Account & Billing
    store: account_billing
  - name: General Inquiry
    store: general_inquiry
`))
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"Technical Issues", "Account & Billing", "General Inquiry"}, r.Names())

	d, ok := r.Lookup("Account & Billing")
	require.True(t, ok)
	assert.Equal(t, "account_billing", d.Store)

	_, ok = r.Lookup("account_billing")
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"wrong version":   "version: 2\ndepartments: []\n",
		"missing version": "departments: []\n",
		"empty name":      "version: 1\ndepartments:\n  - name: ' '\n    store: a\n",
		"bad store":       "version: 1\ndepartments:\n  - name: A\n    store: \"a; DROP\"\n",
		"uppercase store": "version: 1\ndepartments:\n  - name: A\n    store: Store\n",
		"duplicate name":  "version: 1\ndepartments:\n  - name: A\n    store: a\n  - name: A\n    store: b\n",
		"shared store":    "version: 1\ndepartments:\n  - name: A\n    store: a\n  - name: B\n    store: a\n",
		"not yaml":        "version: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_EmptyListIsAllowed(t *testing.T) {
	r, err := Parse([]byte("version: 1\ndepartments: []\n"))
	require.NoError(t, err)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.All())
}

func TestAll_ReturnsCopy(t *testing.T) {
	r, err := NewRegistry([]domain.Department{{Name: "A", Store: "a"}})
	require.NoError(t, err)

	all := r.All()
	all[0].Store = "mutated"

	d, _ := r.Lookup("A")
	assert.Equal(t, "a", d.Store)
	assert.Equal(t, "a", r.All()[0].Store)
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Names())
	_, ok := r.Lookup("A")
	assert.False(t, ok)
}

func TestLoadFile_ShippedRegistry(t *testing.T) {
	r, err := LoadFile(filepath.Join("..", "..", "config", "departments.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Technical Issues",
		"Account & Billing",
		"Product & Service",
		"General Inquiry",
		"Feedback & Suggestions",
	}, r.Names())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
