package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"snowball/model"
)

// Options 读取选项
type Options struct {
	// Encoding of the input document: "" / "utf-8", "gbk" or "gb18030".
	Encoding string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		n, ok := field.Interface().(model.Number)
		if !ok || !n.Valid {
			return nil
		}
		f, _ := n.Float()
		return f
	}, model.Number{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		ts, ok := field.Interface().(model.Timestamp)
		if !ok || ts.IsZero() {
			return nil
		}
		return ts.Time
	}, model.Timestamp{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode 按编码包装 reader
func Decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "gbk", "gb2312":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case "gb18030":
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// ReadMonteCarlo 读取蒙特卡洛输入文档
func ReadMonteCarlo(r io.Reader, opts Options) (*model.MonteCarloDocument, error) {
	var doc model.MonteCarloDocument
	if err := readDocument(r, opts, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReadBacktest 读取回测输入文档
func ReadBacktest(r io.Reader, opts Options) (*model.BacktestDocument, error) {
	var doc model.BacktestDocument
	if err := readDocument(r, opts, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadMonteCarlo 从文件读取蒙特卡洛输入文档
func LoadMonteCarlo(path string, opts Options) (*model.MonteCarloDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMonteCarlo(f, opts)
}

// LoadBacktest 从文件读取回测输入文档
func LoadBacktest(path string, opts Options) (*model.BacktestDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBacktest(f, opts)
}

func readDocument(r io.Reader, opts Options, out any) error {
	dr, err := Decode(r, opts.Encoding)
	if err != nil {
		return err
	}
	if err := json.NewDecoder(dr).Decode(out); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("文档校验失败: %w", err)
	}
	return nil
}
