package models

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Total   int         `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

// DetailedErrorResponse carries structured error details such as field errors or a conflicting date.
func DetailedErrorResponse(err string, details interface{}) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
		Details: details,
	}
}

// ListResponse reports the element count alongside the data.
func ListResponse(data interface{}, total int, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
		Total:   total,
	}
}
