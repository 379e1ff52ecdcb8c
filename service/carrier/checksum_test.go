/*
 * @module service/carrier/checksum_test
 * @description 校验位算法测试
 * @architecture 单元测试 - 验证三种校验算法的正确性与形状容错
 * @documentReference ai_docs/import_pipeline_design.md
 * @stateFlow 测试数据准备 -> 校验执行 -> 结果验证
 * @rules 形状不符必须返回true；校验位非5的模11编码任一数字位变异必须翻转结果
 * @dependencies testing
 * @refs checksum.go
 */

package carrier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumMod11(t *testing.T) {
	t.Run("已知合法编码校验通过", func(t *testing.T) {
		for _, code := range []string{"JD123456785BR", "OT453124780BR", "PN785123466BR", "RA123456785CN"} {
			assert.True(t, ChecksumMod11(code), "编码 %s 应通过模11校验", code)
		}
	})

	t.Run("校验位错误的编码不通过", func(t *testing.T) {
		assert.False(t, ChecksumMod11("JD123456789BR"))
	})

	t.Run("任一数字位变异翻转校验结果", func(t *testing.T) {
		// 校验位为5的编码不参与全量变异：余数0与6都映射到5，
		// 权重位变异可能落回同一校验位（见下方退化子测试）
		for _, code := range []string{"OT453124780BR", "PN785123466BR"} {
			for i, c := range code {
				if c < '0' || c > '9' {
					continue
				}
				mutated := []byte(code)
				mutated[i] = '0' + byte((int(c-'0')+1)%10)
				assert.False(t, ChecksumMod11(string(mutated)),
					"变异 %s 第 %d 位后应校验失败: %s", code, i, string(mutated))
			}
		}
	})

	t.Run("校验位5的映射退化", func(t *testing.T) {
		// JD123456785BR 加权和204余6映射到5；权重5位+1后和209余0同样映射到5
		assert.True(t, ChecksumMod11("JD123456785BR"))
		assert.True(t, ChecksumMod11("JD123457785BR"))
	})

	t.Run("形状不符时不否决", func(t *testing.T) {
		assert.True(t, ChecksumMod11("ABC"))
		assert.True(t, ChecksumMod11("JD12345BR"))
		assert.True(t, ChecksumMod11(""))
	})
}

func TestChecksumMod7(t *testing.T) {
	t.Run("已知合法编码校验通过", func(t *testing.T) {
		assert.True(t, ChecksumMod7("1234567895"))
		assert.True(t, ChecksumMod7("9876543214"))
	})

	t.Run("校验位变异翻转校验结果", func(t *testing.T) {
		assert.False(t, ChecksumMod7("1234567896"))
		assert.False(t, ChecksumMod7("9876543215"))
	})

	t.Run("数据位变异翻转校验结果", func(t *testing.T) {
		// 首位权重1，+1 变异必然改变模7余数
		assert.False(t, ChecksumMod7("2234567895"))
	})

	t.Run("形状不符时不否决", func(t *testing.T) {
		assert.True(t, ChecksumMod7("123456789"))   // 9位
		assert.True(t, ChecksumMod7("12345678901")) // 11位
		assert.True(t, ChecksumMod7("12345678XY"))  // 含字母
	})
}

func TestChecksumLuhnAlphanumeric(t *testing.T) {
	t.Run("已知合法编码校验通过", func(t *testing.T) {
		assert.True(t, ChecksumLuhnAlphanumeric("1Z999AA10123456784"))
	})

	t.Run("末位校验字符变异翻转结果", func(t *testing.T) {
		code := "1Z999AA10123456784"
		for d := byte('0'); d <= '9'; d++ {
			if d == '4' {
				continue
			}
			mutated := code[:len(code)-1] + string(d)
			assert.False(t, ChecksumLuhnAlphanumeric(mutated))
		}
	})

	t.Run("形状不符时不否决", func(t *testing.T) {
		assert.True(t, ChecksumLuhnAlphanumeric("999AA10123456784"))      // 无1Z前缀
		assert.True(t, ChecksumLuhnAlphanumeric("1Z999AA1012345678"))     // 17位
		assert.True(t, ChecksumLuhnAlphanumeric(strings.Repeat("1Z", 9))) // 末位非数字
	})
}
