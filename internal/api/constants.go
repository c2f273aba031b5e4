package api

// 接入面名称（指标标签、日志字段）
const (
	SurfaceFrame   = "frame"
	SurfacePayload = "payload"
)

// 返回给客户端的固定文案
const (
	MsgNoData   = "No data available"
	MsgNotFound = "Not Found"
)

// Routes 一个接入面的四个路由
type Routes struct {
	All   string
	Last  string
	LastN string // 必须包含 :n 参数
	Write string
}

// FrameRoutes 帧接入面：/read/all, /read, /read/{n}, POST /write
var FrameRoutes = Routes{
	All:   "/read/all",
	Last:  "/read",
	LastN: "/read/:n",
	Write: "/write",
}

// PayloadRoutes 负载接入面：/data, /data/last, /data/last/{n}, POST /data
var PayloadRoutes = Routes{
	All:   "/data",
	Last:  "/data/last",
	LastN: "/data/last/:n",
	Write: "/data",
}
