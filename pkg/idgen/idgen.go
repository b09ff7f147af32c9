/*
 * @Description: 公共ID编解码
 * @Author: inkwell
 * @Date: 2026-03-03 13:16:58
 * @LastEditTime: 2026-03-03 13:16:58
 * @LastEditors: inkwell
 */

// Package idgen 把数据库自增 ID 编码为对外暴露的短 ID，避免泄露数据规模。
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"

	"github.com/sqids/sqids-go"

	"github.com/inkwell-cms/inkwell/pkg/constant"
)

// DefaultAlphabet 是默认的字母表
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EntityType 是编码进公共 ID 的实体类型，不同类型的 ID 不能混用
type EntityType uint64

const (
	EntityTypeUser             EntityType = 1
	EntityTypeArticle          EntityType = 2
	EntityTypeComment          EntityType = 3
	EntityTypeModerationRecord EntityType = 4
)

// Encoder 负责公共 ID 的编码与解码
type Encoder struct {
	s *sqids.Sqids
}

// GenerateRandomSeed 生成一个随机的 16 字节种子（返回 32 字符的十六进制字符串）
func GenerateRandomSeed() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("生成随机种子失败: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// shuffleAlphabet 使用种子确定性地打乱字母表，同一种子总是得到同一字母表
func shuffleAlphabet(seed string) string {
	var seedInt int64
	for i, c := range seed {
		seedInt += int64(c) * int64(i+1)
	}
	r := mrand.New(mrand.NewSource(seedInt))

	alphabet := []rune(DefaultAlphabet)
	r.Shuffle(len(alphabet), func(i, j int) {
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	})
	return string(alphabet)
}

// New 创建编码器；seed 为空时使用默认字母表
func New(seed string) (*Encoder, error) {
	alphabet := DefaultAlphabet
	if seed != "" {
		alphabet = shuffleAlphabet(seed)
	}
	s, err := sqids.New(sqids.Options{
		MinLength: 6,
		Alphabet:  alphabet,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Sqids 编码器失败: %w", err)
	}
	return &Encoder{s: s}, nil
}

// Encode 生成公共 ID
func (e *Encoder) Encode(id uint, kind EntityType) (string, error) {
	publicID, err := e.s.Encode([]uint64{uint64(id), uint64(kind)})
	if err != nil {
		return "", fmt.Errorf("编码公共ID失败: %w", err)
	}
	return publicID, nil
}

// MustEncode 用于 ID 必然合法的场景（来自数据库的主键）
func (e *Encoder) MustEncode(id uint, kind EntityType) string {
	publicID, err := e.Encode(id, kind)
	if err != nil {
		panic(err)
	}
	return publicID
}

// Decode 解码公共 ID 并校验实体类型。
// 同一组数字可能对应多个字符串，只接受重新编码后完全一致的规范形式。
func (e *Encoder) Decode(publicID string, kind EntityType) (uint, error) {
	numbers := e.s.Decode(publicID)
	if len(numbers) != 2 || EntityType(numbers[1]) != kind || numbers[0] == 0 {
		return 0, constant.ErrInvalidPublicID
	}
	canonical, err := e.s.Encode(numbers)
	if err != nil || canonical != publicID {
		return 0, constant.ErrInvalidPublicID
	}
	return uint(numbers[0]), nil
}
