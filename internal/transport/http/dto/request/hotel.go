package request

// HotelForm is the JSON body of a create or update. Multipart submissions
// carry the same fields as form values alongside the files.
type HotelForm struct {
	Name        string `json:"name" form:"name" validate:"required"`
	City        string `json:"city" form:"city" validate:"required"`
	Address     string `json:"address" form:"address" validate:"required"`
	Description string `json:"description" form:"description"`
}
