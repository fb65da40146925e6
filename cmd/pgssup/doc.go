// Package main hosts the pgssup CLI.
//
// encode turns a subtitle manifest and its PNG images into a Blu-ray .sup
// stream, info lists what an existing stream contains and extract turns a
// stream back into PNG images plus a manifest that encode accepts.
package main
