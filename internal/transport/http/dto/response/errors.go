package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrInvalidHotelID = ErrorResponse{
		Status:  "error",
		Error:   "invalid_hotel_id",
		Details: "Hotel id must be a number",
	}

	ErrCatalogUnavailable = ErrorResponse{
		Status:  "error",
		Error:   "catalog_unavailable",
		Details: "Could not load hotels from the upstream service",
	}

	ErrMissingImageURL = ErrorResponse{
		Status:  "error",
		Error:   "missing_image_url",
		Details: "Query parameter url is required",
	}
)
