package models

var JobTypeDisplayNames = map[string]string{
	"full-time":  "Toàn thời gian",
	"part-time":  "Bán thời gian",
	"contract":   "Hợp đồng",
	"internship": "Thực tập",
	"freelance":  "Freelance",
	"remote":     "Làm việc từ xa",
}

var ExperienceDisplayNames = map[string]string{
	"entry":    "Mới tốt nghiệp",
	"junior":   "1-2 năm",
	"mid":      "3-5 năm",
	"senior":   "Trên 5 năm",
	"manager":  "Quản lý",
	"director": "Giám đốc",
}

var SortDisplayNames = map[string]string{
	"recent":   "Mới nhất",
	"relevant": "Liên quan nhất",
	"featured": "Nổi bật",
}

func GetJobTypeDisplayName(id string) string {
	if name, ok := JobTypeDisplayNames[id]; ok {
		return name
	}
	return id
}

func GetExperienceDisplayName(id string) string {
	if name, ok := ExperienceDisplayNames[id]; ok {
		return name
	}
	return id
}

func GetSortDisplayName(id string) string {
	if name, ok := SortDisplayNames[id]; ok {
		return name
	}
	return id
}
