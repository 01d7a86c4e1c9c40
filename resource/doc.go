// Package resource bounds the work done by snapshot operations.
//
// A Controller caps three things: memory reserved for encode and decode
// buffers, the number of concurrent background saves, and the bytes per
// second moved through blob storage. A nil *Controller imposes no limits.
package resource
