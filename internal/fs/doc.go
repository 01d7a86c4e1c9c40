// Package fs abstracts the filesystem calls of the local blob store so tests
// can inject write, sync, close and rename failures.
//
// Production code uses [Default], which is [LocalFS]. Tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 1024})
package fs
