// This file is part of VanillaTowns.
// Copyright (C) 2026.  VanillaTowns contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Йоу, чат! Старі добрі кольорові коди: &a, &l, &r і так далі.
// Адміни звикли писати повідомлення саме так, тому перетворюємо
// їх у chat.Message, який розуміє клієнт.

package text

import (
	"strings"

	"github.com/Tnze/go-mc/chat"
)

var legacyColors = map[byte]string{
	'0': chat.Black,
	'1': chat.DarkBlue,
	'2': chat.DarkGreen,
	'3': chat.DarkAqua,
	'4': chat.DarkRed,
	'5': chat.DarkPurple,
	'6': chat.Gold,
	'7': chat.Gray,
	'8': chat.DarkGray,
	'9': chat.Blue,
	'a': chat.Green,
	'b': chat.Aqua,
	'c': chat.Red,
	'd': chat.LightPurple,
	'e': chat.Yellow,
	'f': chat.White,
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Legacy перетворює рядок з кодами & або § у компонент чату.
// Колір скидає форматування, як і в ванільному клієнті.
// &#RRGGBB задає довільний колір.
func Legacy(s string) chat.Message {
	var (
		root  = chat.Message{}
		style chat.Message
		buf   strings.Builder
	)
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		part := style
		part.Text = buf.String()
		root.Extra = append(root.Extra, part)
		buf.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		var next int
		switch {
		case c == '&' && i+1 < len(s):
			next = i + 1
		case c == 0xC2 && i+2 < len(s) && s[i+1] == 0xA7: // § в UTF-8
			next = i + 2
		default:
			buf.WriteByte(c)
			continue
		}

		code := s[next] | 0x20 // нижній регістр для літер
		if code == '#' && next+6 < len(s) {
			hex := s[next+1 : next+7]
			if isHex(hex[0]) && isHex(hex[1]) && isHex(hex[2]) && isHex(hex[3]) && isHex(hex[4]) && isHex(hex[5]) {
				flush()
				style = chat.Message{Color: "#" + strings.ToUpper(hex)}
				i = next + 6
				continue
			}
		}
		if color, ok := legacyColors[code]; ok {
			flush()
			style = chat.Message{Color: color}
			i = next
			continue
		}
		switch code {
		case 'k':
			flush()
			style.Obfuscated = true
		case 'l':
			flush()
			style.Bold = true
		case 'm':
			flush()
			style.StrikeThrough = true
		case 'n':
			flush()
			style.UnderLined = true
		case 'o':
			flush()
			style.Italic = true
		case 'r':
			flush()
			style = chat.Message{}
		case '&':
			buf.WriteByte('&')
		default:
			// не код, пишемо як є
			buf.WriteString(s[i : next+1])
			i = next
			continue
		}
		i = next
	}
	flush()

	if len(root.Extra) == 1 {
		return root.Extra[0]
	}
	if len(root.Extra) == 0 {
		return chat.Text("")
	}
	return root
}

// Escape робить текст гравця безпечним для Legacy: && стає просто &
func Escape(s string) string {
	return strings.ReplaceAll(s, "&", "&&")
}

// Strip прибирає всі кольорові коди
func Strip(s string) string {
	return Legacy(s).ClearString()
}
