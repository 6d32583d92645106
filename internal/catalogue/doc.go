// Package catalogue defines the fixed set of datasets the curation pipeline
// supports. The catalogue is explicit configuration, not code: adding a
// dataset means adding a YAML entry, and an identifier outside the catalogue
// is a user error (UnknownDatasetError), never a retry.
//
// Catalogues are validated twice on load: strict YAML decoding rejects
// unknown fields (typos), and a CUE schema enforces the per-entry shape
// (accession formats, positive sample counts). A default catalogue of the
// 21 supported CuMiDa GPL570 two-class datasets is embedded in the binary.
package catalogue
