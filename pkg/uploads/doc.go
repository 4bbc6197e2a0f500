// Package uploads validates uploaded images and writes them to a Store.
//
// Files are checked for size, extension and sniffed content type, then stored
// under "YYYY-MM/img_<uuid>.<ext>". Two stores are provided: FileSystemStore
// writes below a local directory and S3Store puts objects into an
// S3-compatible bucket.
package uploads
