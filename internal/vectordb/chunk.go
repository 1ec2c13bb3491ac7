package vectordb

import "strconv"

// Metadata keys stored alongside every chunk. The index only filters on exact
// string equality, so every field is flattened to a string.
const (
	FieldDocumentID   = "document_id"
	FieldTitle        = "title"
	FieldFullPath     = "full_path"
	FieldChunkIndex   = "chunk_index"
	FieldStartOffset  = "start_offset"
	FieldEndOffset    = "end_offset"
	FieldIsTitleChunk = "is_title_chunk"
)

// Chunk is one indexed unit of a document.
type Chunk struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
}

// ChunkMetadata holds the document-level and positional fields of a chunk.
type ChunkMetadata struct {
	DocumentID   string `json:"document_id"`
	Title        string `json:"title"`
	FullPath     string `json:"full_path"`
	ChunkIndex   int    `json:"chunk_index"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	IsTitleChunk bool   `json:"is_title_chunk"`
}

// ChunkID returns the deterministic id of the index-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return documentID + "_" + strconv.Itoa(index)
}

// Match pairs a chunk with its distance from the query. Distance is
// 1 - cosine similarity, so it lies in [0, 2] and lower is closer.
type Match struct {
	Chunk
	Distance float32
}

// Relevance is the user-facing score, 1 - Distance.
func (m Match) Relevance() float32 {
	return 1 - m.Distance
}

// Include selects which fields a similarity query fills in.
type Include uint8

const (
	IncludeDocuments Include = 1 << iota
	IncludeMetadatas
	IncludeDistances

	IncludeAll = IncludeDocuments | IncludeMetadatas | IncludeDistances
)

// Has reports whether all bits of f are set in i.
func (i Include) Has(f Include) bool {
	return i&f == f
}

func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		FieldDocumentID:   m.DocumentID,
		FieldTitle:        m.Title,
		FieldFullPath:     m.FullPath,
		FieldChunkIndex:   strconv.Itoa(m.ChunkIndex),
		FieldStartOffset:  strconv.Itoa(m.StartOffset),
		FieldEndOffset:    strconv.Itoa(m.EndOffset),
		FieldIsTitleChunk: strconv.FormatBool(m.IsTitleChunk),
	}
}

func mapToMetadata(m map[string]string) ChunkMetadata {
	chunkIndex, _ := strconv.Atoi(m[FieldChunkIndex])
	start, _ := strconv.Atoi(m[FieldStartOffset])
	end, _ := strconv.Atoi(m[FieldEndOffset])
	isTitle, _ := strconv.ParseBool(m[FieldIsTitleChunk])

	return ChunkMetadata{
		DocumentID:   m[FieldDocumentID],
		Title:        m[FieldTitle],
		FullPath:     m[FieldFullPath],
		ChunkIndex:   chunkIndex,
		StartOffset:  start,
		EndOffset:    end,
		IsTitleChunk: isTitle,
	}
}
