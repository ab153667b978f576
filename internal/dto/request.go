package dto

// UploadByURLRequest is the JSON body of POST /images when the source is
// fetched by the service instead of attached as a multipart file.
type UploadByURLRequest struct {
	URL        string            `json:"url" binding:"required"`
	ImageGroup string            `json:"image_group"`
	Tags       map[string]string `json:"tags"`
}
