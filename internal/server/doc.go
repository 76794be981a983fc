// Package server implements the MCP (Model Context Protocol) server for
// calibrated shape measurement.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: zerolog JSON on stderr
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Color:
//   - image_sample_color: Get color at pixel
//
// Detection:
//   - image_edge_detect: Canny edge map preview
//   - image_detect_contours: Uncalibrated contours with shape categories
//
// Measurement:
//   - image_measure_shapes: Calibrated edge lengths and radii in millimeters
//   - image_annotate_shapes: Measurements drawn onto the image
//   - image_crop_shape: Zoom into one detected contour
//   - image_measure_distance: Calibrated distance between two points
//
// Playlist:
//   - playlist_open: Start a list of images and measure the first
//   - playlist_next: Advance, wrapping, and measure from scratch
//   - playlist_current: Measurements of the current image
//
// Each measured image gets a fresh session: its own reference, scale and
// records. Nothing carries over between images.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
