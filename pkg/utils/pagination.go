package utils

// Pagination 分页请求参数
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Normalize 修正非法分页参数并返回 (skip, limit)
func (p *Pagination) Normalize() (int64, int64) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return int64((p.Page - 1) * p.Limit), int64(p.Limit)
}

// NewPageResult 组装分页结果
func (p *Pagination) NewPageResult(list interface{}, total int64) PageResult {
	return PageResult{
		List:  list,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}
}
