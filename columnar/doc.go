// Package columnar converts sparse vectors to and from Apache Arrow arrays
// and Parquet files.
//
// Arrow nulls and vector NULL elements map onto each other. Parquet files
// use a sparse {index, value} row schema with zstd compression; the
// logical vector size is stored as key-value metadata.
package columnar
