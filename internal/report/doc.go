// Package report はベンチマーク結果の永続化と整形を提供する。
//
// CSVファイルへの追記（新規作成時のみヘッダを書く）と、
// コンソール表示用の固定幅サマリーテーブルの生成を行う。
package report
