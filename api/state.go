package api

type CategoriesRequest struct {
	Categories []string `json:"categories"`
}

type TagsRequest struct {
	Tags []string `json:"tags"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type PageRequest struct {
	Page int `json:"page"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}
