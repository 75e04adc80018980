// Package mhw builds bit-exact command-buffer instructions for media
// fixed-function engines: the BLT copy engine, the VDENC video encoder and
// the video-processing filter pipeline.
//
// # Overview
//
// A command is built in four steps:
//
//  1. The caller obtains a parameter record for a command kind from a
//     command builder (blt.Itf, vdenc.Itf) and fills its logical fields.
//  2. The builder copies the parameters into a fixed-layout template
//     (package hwcmd) using an ordered field list, with per-generation
//     overrides and extension hooks.
//  3. Every referenced GPU resource is patched in through a Resolver,
//     either as a direct GPU virtual address or as a deferred patch-list
//     entry.
//  4. The finished command is appended atomically to a CommandBuffer.
//
// # Generations
//
// Each hardware generation is a composition of layouts and field-list
// overrides on top of a parent generation, registered by name and selected
// once at construction:
//
//	itf, err := vdenc.New("xe2_lpm", osItf)
//
// # Logging
//
// mhw is silent by default. Use SetLogger to route diagnostics to a
// log/slog handler.
//
// # Concurrency
//
// A command builder and the command buffers it writes belong to one
// hardware context and must not be used from several goroutines at once.
// Only the logger and the generation registries are safe for concurrent use.
package mhw
