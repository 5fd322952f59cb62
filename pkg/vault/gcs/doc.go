// Package gcs provides a vault backed by Google Cloud Storage. It is only
// compiled with the gcp build tag.
package gcs
