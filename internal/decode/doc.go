// Package decode develops single RAW (DNG) frames into JPEG intermediates.
//
// A [Profile] carries the development parameters and maps them onto dcraw
// flags. A [Decoder] runs dcraw for one frame, reads its TIFF output and
// writes the JPEG atomically. Decoders are stateless; the convert package
// fans them out across workers.
package decode
