// Package process cleans up browser process trees left behind after the
// CDP connection is gone.
package process
