package preview

import "errors"

// ErrUnableToCreateCompositionTracks is returned when the source's duration
// cannot be probed, no segment plan can be computed for it, or there are no
// segments to assemble.
var ErrUnableToCreateCompositionTracks = errors.New("preview: unable to create composition tracks")

// ErrSegmentInsertionFailed is returned when a segment's trim/speed filter
// stage fails to build.
var ErrSegmentInsertionFailed = errors.New("preview: segment insertion failed")

// ErrUnableToCreateExportSession is returned when ffmpeg cannot be located,
// the destination cannot be prepared or committed, or the export ffmpeg
// process cannot be started or fails.
var ErrUnableToCreateExportSession = errors.New("preview: unable to create export session")

// ErrCancelled is returned when assembly is cancelled mid-flight.
var ErrCancelled = errors.New("preview: cancelled")
