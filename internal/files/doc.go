// Package files finds measurement files on disk and writes artifacts into
// output directories.
//
// Discovery lists the .csv and .txt exports of a directory in name order and
// turns them into pipeline sources. Manager writes rendered plots and export
// artifacts through a temporary file, so a reader never sees a partial file.
package files
