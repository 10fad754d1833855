// Package shared holds code used across the voltweb packages that belongs to
// no single domain or layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs,
//     including per-file assertions such as AssertFileLogged and AssertFileError
//   - CVCSV, DPVCSV and UnknownCSV fixture exports
//   - MeasurementFixtures for writing fixture files into t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    fixtures := testutil.NewMeasurementFixtures(t.TempDir())
//	    paths, err := fixtures.GenerateTestDataFiles()
//	    ...
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
