// Package delivery uploads finished renders to S3-compatible object
// storage. Like archiving, delivery never fails a run: the pipeline logs an
// upload error and completes, because the local render already exists.
package delivery
