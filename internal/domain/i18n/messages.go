package i18n

// messages is the UI string catalog used by the server-rendered pages and emails.
var messages = map[string]LocalizedText{
	"brand":                   Text("StayFit", "ستاي فت"),
	"nav.home":                Text("Home", "الرئيسية"),
	"nav.coaches":             Text("Coaches", "المدربون"),
	"nav.pricing":             Text("Pricing", "الأسعار"),
	"nav.dashboard":           Text("Dashboard", "لوحة التحكم"),
	"nav.login":               Text("Sign in", "تسجيل الدخول"),
	"nav.logout":              Text("Sign out", "تسجيل الخروج"),
	"nav.language":            Text("العربية", "English"),
	"home.title":              Text("Train with the best coaches in town", "تدرّب مع أفضل المدربين في المدينة"),
	"home.subtitle":           Text("Personal training packs built around your goals.", "باقات تدريب شخصي مصممة حول أهدافك."),
	"home.services":           Text("What we offer", "خدماتنا"),
	"home.reviews":            Text("What our clients say", "آراء عملائنا"),
	"coaches.title":           Text("Meet our coaches", "تعرّف على مدربينا"),
	"coaches.experience":      Text("Years of experience", "سنوات الخبرة"),
	"coaches.empty":           Text("No coaches yet.", "لا يوجد مدربون بعد."),
	"pricing.title":           Text("Choose your pack", "اختر باقتك"),
	"pricing.from":            Text("From", "ابتداءً من"),
	"pricing.sessions":        Text("sessions", "جلسات"),
	"pricing.valid":           Text("Valid for %d days", "صالحة لمدة %d يوم"),
	"pricing.buy":             Text("Buy now", "اشترِ الآن"),
	"pricing.coupon":          Text("Coupon code", "رمز القسيمة"),
	"checkout.title":          Text("Checkout", "الدفع"),
	"checkout.pack":           Text("Pack", "الباقة"),
	"checkout.price":          Text("Price", "السعر"),
	"checkout.amount_due":     Text("Amount due", "المبلغ المستحق"),
	"checkout.expires":        Text("Expires on", "تنتهي في"),
	"checkout.pay":            Text("Pay now", "ادفع الآن"),
	"checkout.not_pending":    Text("This purchase is no longer awaiting payment.", "هذه العملية لم تعد بانتظار الدفع."),
	"checkout.gateway_error":  Text("The payment gateway is unavailable, please try again.", "بوابة الدفع غير متاحة، يرجى المحاولة مرة أخرى."),
	"payment.title":           Text("Payment status", "حالة الدفع"),
	"payment.completed":       Text("Payment received. Your pack is active.", "تم استلام الدفع. باقتك مفعّلة الآن."),
	"payment.cancelled":       Text("The payment was cancelled.", "تم إلغاء عملية الدفع."),
	"payment.failed":          Text("The payment could not be confirmed.", "تعذّر تأكيد عملية الدفع."),
	"payment.pending":         Text("We could not reach the payment gateway. Your purchase is still pending.", "تعذّر الوصول إلى بوابة الدفع. ما زالت عملية الشراء معلّقة."),
	"login.title":             Text("Sign in to StayFit", "سجّل الدخول إلى ستاي فت"),
	"login.hint":              Text("Continue with your account to book sessions and manage your packs.", "تابع بحسابك لحجز الجلسات وإدارة باقاتك."),
	"login.continue":          Text("Continue", "متابعة"),
	"login.email":             Text("Email", "البريد الإلكتروني"),
	"login.name":              Text("Name", "الاسم"),
	"dashboard.admin":         Text("Admin dashboard", "لوحة المشرف"),
	"dashboard.coach":         Text("My week", "أسبوعي"),
	"dashboard.client":        Text("My training", "تدريبي"),
	"dashboard.users":         Text("Users", "المستخدمون"),
	"dashboard.pending":       Text("Pending purchases", "مشتريات معلّقة"),
	"dashboard.completed":     Text("Completed purchases", "مشتريات مكتملة"),
	"dashboard.revenue":       Text("Revenue", "الإيرادات"),
	"dashboard.packs":         Text("My packs", "باقاتي"),
	"dashboard.remaining":     Text("Remaining sessions", "الجلسات المتبقية"),
	"dashboard.upcoming":      Text("Upcoming sessions", "الجلسات القادمة"),
	"dashboard.no_upcoming":   Text("No upcoming sessions.", "لا توجد جلسات قادمة."),
	"dashboard.cancel":        Text("Cancel", "إلغاء"),
	"dashboard.failed_emails": Text("Failed emails", "رسائل لم تُرسل"),
	"dashboard.attempts":      Text("Attempts", "المحاولات"),
	"dashboard.error":         Text("Error", "الخطأ"),
	"dashboard.retry":         Text("Retry", "إعادة المحاولة"),
	"dashboard.abandon":       Text("Abandon", "تجاهل"),
	"calendar.prev":           Text("Previous week", "الأسبوع السابق"),
	"calendar.next":           Text("Next week", "الأسبوع التالي"),
	"calendar.today":          Text("Today", "اليوم"),
	"calendar.unplaced":       Text("Outside the calendar hours", "خارج ساعات التقويم"),
	"status.scheduled":        Text("Scheduled", "مجدولة"),
	"status.completed":        Text("Completed", "مكتملة"),
	"status.cancelled":        Text("Cancelled", "ملغاة"),
	"status.pending":          Text("Pending", "معلّقة"),
	"email.receipt.subject":   Text("Your StayFit purchase is confirmed", "تم تأكيد عملية الشراء في ستاي فت"),
	"email.receipt.body":      Text("Hi %s,\n\nThanks for your purchase of **%s**.\n\n- Sessions: %d\n- Amount paid: %.2f SAR\n- Valid until: %s\n\nSee you at the studio!", "مرحباً %s،\n\nشكراً لشرائك **%s**.\n\n- عدد الجلسات: %d\n- المبلغ المدفوع: %.2f ريال\n- صالحة حتى: %s\n\nنراك في الاستوديو!"),
	"email.cancelled.subject": Text("Your session was cancelled", "تم إلغاء جلستك"),
	"email.cancelled.body":    Text("Hi %s,\n\nYour session on **%s at %s** has been cancelled.", "مرحباً %s،\n\nتم إلغاء جلستك بتاريخ **%s الساعة %s**."),
}

// T returns the catalog entry for key in the given locale.
// Missing keys return the key itself so gaps are visible on the page.
func T(locale Locale, key string) string {
	msg, ok := messages[key]
	if !ok {
		return key
	}
	return msg.Resolve(locale)
}
