package azurevision

// analyzeResponse mirrors the Image Analysis 4.0 analyze response body.
type analyzeResponse struct {
	ModelVersion  string         `json:"modelVersion"`
	CaptionResult *captionResult `json:"captionResult,omitempty"`
	ReadResult    *readResult    `json:"readResult,omitempty"`
	Metadata      imageMetadata  `json:"metadata"`
}

type captionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type readResult struct {
	Blocks []readBlock `json:"blocks"`
}

type readBlock struct {
	Lines []readLine `json:"lines"`
}

type readLine struct {
	Text            string       `json:"text"`
	BoundingPolygon []imagePoint `json:"boundingPolygon"`
	Words           []readWord   `json:"words"`
}

type readWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type imagePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type imageMetadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
