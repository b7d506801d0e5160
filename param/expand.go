// Package param 实现扁平参数表到参数组的展开。
//
// 一次训练请求的参数是一个扁平的 map[string]string，其中形如
// fitParam.<n>.<key>=<value> 的条目描述第 n 个参数组的一个超参覆盖。
// 各参数组相互独立：任何组都观察不到其他组的参数。
package param

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rushteam/trainkit/core"
)

// Prefix 是参数组条目的键前缀。
const Prefix = "fitParam."

// Group 是一个参数组：组序号 + 该组的超参覆盖。
// 序号非负且在一次请求内唯一，允许不连续（部分覆盖的真实场景）。
type Group struct {
	Index  int
	Params map[string]string
}

// Expand 将扁平参数表展开为按序号升序排列的参数组列表。
//
// 规则：
//   - 扫描 fitParam.<n>.<key> 形式的键，按 <n> 分组
//   - 没有任何 fitParam.* 键时，返回一个隐式组（序号 0，空覆盖）
//   - <n> 非法（非整数、负数）或 <key> 缺失时返回 CONFIG_INVALID 领域错误
func Expand(params map[string]string) ([]Group, error) {
	byIndex := make(map[int]map[string]string)

	for k, v := range params {
		if !strings.HasPrefix(k, Prefix) {
			continue
		}
		rest := k[len(Prefix):]
		dot := strings.Index(rest, ".")
		if dot <= 0 || dot == len(rest)-1 {
			return nil, core.NewDomainError(core.ModuleParam, core.ErrorCodeConfigInvalid,
				fmt.Sprintf("param: malformed group key %q (want %s<n>.<key>)", k, Prefix))
		}
		idxStr, key := rest[:dot], rest[dot+1:]
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 {
			return nil, core.NewDomainError(core.ModuleParam, core.ErrorCodeConfigInvalid,
				fmt.Sprintf("param: group index %q in key %q is not a non-negative integer", idxStr, k))
		}
		if byIndex[idx] == nil {
			byIndex[idx] = make(map[string]string)
		}
		byIndex[idx][key] = v
	}

	if len(byIndex) == 0 {
		// 隐式单组：序号 0，空覆盖
		return []Group{{Index: 0, Params: map[string]string{}}}, nil
	}

	groups := make([]Group, 0, len(byIndex))
	for idx, p := range byIndex {
		groups = append(groups, Group{Index: idx, Params: p})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Index < groups[j].Index })
	return groups, nil
}

// Merge 将组内覆盖叠加到基础参数之上，返回新的参数表（两者均不被修改）。
// 用于把请求级公共参数与组内超参合并后传给 Estimator。
func Merge(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Shared 返回参数表中非 fitParam.* 的请求级公共参数。
func Shared(params map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range params {
		if !strings.HasPrefix(k, Prefix) {
			out[k] = v
		}
	}
	return out
}
