// Package ingest watches for camera cards appearing on the system and hands
// them to a run handler. It listens on the udev netlink socket directly, so
// no udev rules invoking the CLI as root are needed. A work directory admits
// one watcher at a time, enforced with a file lock.
package ingest
