// Package image fetches cloud images into a local directory.
//
// An image is identified by its URL; the local filename is the last element
// of the URL path. A file that is already present is never downloaded again,
// so re-running a build only costs a stat. Downloads stream into a temporary
// file in the target directory and are renamed into place once complete.
//
// http and https URLs are fetched with net/http. s3://bucket/key URLs are
// fetched with the AWS SDK and work against any S3-compatible endpoint.
package image
