// Package cookie 访问 Cookie 的 agentsPaged 接口，返回近七天热度最高的 AI Agent。
package cookie
