package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"voltweb/internal/shared/testutil"
	"voltweb/pkg/contracts/domain"
)

var (
	cvCSV  = testutil.CVCSV
	dpvCSV = testutil.DPVCSV
)

func mustTable(t *testing.T, name, content string) *domain.RawTable {
	t.Helper()
	table, err := ReadTable(name, strings.NewReader(content))
	require.NoError(t, err)
	return table
}
